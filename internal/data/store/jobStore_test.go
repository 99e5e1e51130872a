package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/data/store"
	"github.com/akolanti/ChatbotAPI/internal/domain/jobModel"
)

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr, internalStore := newMiniRedis(t)
	jobStore := store.NewRedisJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:      jobID,
		Status:  jobModel.JobStatusRunning,
		JobType: jobModel.JobTypeIngest,
		JobPayload: jobModel.JobPayload{
			Title:    "Handbook",
			FileName: "handbook.pdf",
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := jobStore.SaveJob(ctx, testJob); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}
		if retrievedJob.JobPayload.Title != testJob.JobPayload.Title {
			t.Errorf("Data mismatch! Got %s, want %s", retrievedJob.JobPayload.Title, testJob.JobPayload.Title)
		}
		if ttl := mr.TTL("ingestjob:" + jobID); ttl != config.RedisJobStoreTTL {
			t.Errorf("expected ttl %v, got %v", config.RedisJobStoreTTL, ttl)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		if _, found := jobStore.GetJob(ctx, "ghost-id"); found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Corrupt Job Is Not Found", func(t *testing.T) {
		if err := mr.Set("ingestjob:broken", "{"); err != nil {
			t.Fatal(err)
		}
		if _, found := jobStore.GetJob(ctx, "broken"); found {
			t.Error("Expected found=false for corrupt job")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)
		if mr.Exists("ingestjob:" + jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestInMemoryJobStore_Race(t *testing.T) {
	jobStore := store.InitInMemoryJobStore()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, jobModel.Job{Id: "race-job"})
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()

	if _, found := jobStore.GetJob(ctx, "race-job"); !found {
		t.Fatal("expected race-job to be stored")
	}
	jobStore.DeleteJob(ctx, "race-job")
	if _, found := jobStore.GetJob(ctx, "race-job"); found {
		t.Fatal("expected race-job to be deleted")
	}
}
