package worker

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/data/store"
	"github.com/akolanti/ChatbotAPI/internal/domain/jobModel"
	"github.com/akolanti/ChatbotAPI/internal/job"
)

func newTestService(t *testing.T) *job.Service {
	t.Helper()
	docs, err := store.NewJsonDocumentStore(filepath.Join(t.TempDir(), "documents.json"))
	if err != nil {
		t.Fatalf("document store: %v", err)
	}
	return job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store.InitInMemoryJobStore(),
		DocumentStore:     docs,
	})
}

func waitForStatus(t *testing.T, svc *job.Service, id string, want jobModel.JobStatus) jobModel.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if j, ok := svc.JobStore.GetJob(context.Background(), id); ok && j.Status == want {
			return j
		}
		time.Sleep(10 * time.Millisecond)
	}
	j, _ := svc.JobStore.GetJob(context.Background(), id)
	t.Fatalf("job %s never reached %s, last state %+v", id, want, j)
	return j
}

func TestWorkerPool_Flow(t *testing.T) {
	svc := newTestService(t)
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}
	pool := NewPool(PoolConfig{JobService: svc, StopWorkerChannel: stopChan, WaitGroup: wg, MaxWorkers: 3})
	pool.Start()

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		svc.DispatcherChannel <- true
		time.Sleep(50 * time.Millisecond)
		if count := pool.WorkerCount(); count < 2 {
			t.Errorf("Expected at least 2 workers, got %d", count)
		}
	})

	t.Run("Worker ingests an uploaded file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "faq.txt")
		if err := os.WriteFile(path, []byte("We open at nine. We close at five."), 0o600); err != nil {
			t.Fatal(err)
		}
		err := svc.Enqueue(context.Background(), jobModel.Job{
			Id:         "ingest-1",
			JobType:    jobModel.JobTypeIngest,
			JobPayload: jobModel.JobPayload{Title: "FAQ", FileName: "faq.txt", FilePath: path, Tags: []string{"faq"}},
		})
		if err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}

		done := waitForStatus(t, svc, "ingest-1", jobModel.JobStatusComplete)
		if done.JobPayload.DocumentId == "" || done.JobPayload.ChunkCount != 1 {
			t.Errorf("unexpected payload %+v", done.JobPayload)
		}
		doc, found, err := svc.DocumentStore.GetDocumentByID(context.Background(), done.JobPayload.DocumentId)
		if err != nil || !found {
			t.Fatalf("document not stored: %v", err)
		}
		if doc.Title != "FAQ" {
			t.Errorf("got title %q", doc.Title)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("uploaded file was not removed")
		}
	})

	t.Run("Unsupported file fails the job", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "image.png")
		if err := os.WriteFile(path, []byte{0x89, 0x50}, 0o600); err != nil {
			t.Fatal(err)
		}
		if err := svc.Enqueue(context.Background(), jobModel.Job{Id: "ingest-2", JobType: jobModel.JobTypeIngest, JobPayload: jobModel.JobPayload{Title: "img", FilePath: path}}); err != nil {
			t.Fatal(err)
		}
		failed := waitForStatus(t, svc, "ingest-2", jobModel.JobStatusError)
		if failed.Error.Message != "unsupported document type" {
			t.Errorf("got error %+v", failed.Error)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
		if count := pool.WorkerCount(); count != 0 {
			t.Errorf("expected 0 workers after stop, got %d", count)
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	svc := newTestService(t)
	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	defer close(stopChan)
	pool := NewPool(PoolConfig{JobService: svc, StopWorkerChannel: stopChan, WaitGroup: wg, MinWorkers: 1, IdleTimeout: 50 * time.Millisecond})

	pool.createWorker()
	pool.createWorker()
	time.Sleep(200 * time.Millisecond)

	if count := pool.WorkerCount(); count != 1 {
		t.Errorf("idle workers should retire down to the floor, count is %d", count)
	}
}
