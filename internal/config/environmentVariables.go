package config

import (
	"log/slog"
	"time"
)

const (
	LOG_LEVEL_PROD = slog.LevelInfo
	LOG_LEVEL_DEV  = slog.LevelDebug
	TRACE_ID_KEY   = "traceId"

	//api keys
	API_KEY_HEADER      = "X-AI-API-Key"
	API_KEY_QUERY_PARAM = "apiKey"

	//rate limits - public invoke is limited per key, otp per ip
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5
	OTP_RATE_LIMIT_PER_SECOND   = 0.2
	OTP_BURST_RATE_LIMIT        = 3

	//documents
	MaxChunkLength    = 1200
	DocumentsFileName = "documents.json"
	MaxUploadSize     = 32 << 20 //32mb

	//public sessions are timestamp based
	PublicSessionPrefix = "pub_"

	//worker pool for upload ingestion
	RequestsPerNewWorkerCount int64 = 5
	MaxWorkerCount            int64 = 4
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	JobTimeout                      = 2 * time.Minute
	BufferLimit                     = 50

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 60 * time.Second //container replies can be slow
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//liveness
	KeepAliveInterval    = 5 * time.Minute
	PingInterval         = 30 * time.Second
	LivenessCheckTimeout = 10 * time.Second
	PingPath             = "/api/ping"
	HealthPath           = "/api/health"

	//otp
	OTPLength      = 6
	OTPTTL         = 10 * time.Minute
	OTPSubject     = "Your verification code"
	OTPMaxAttempts = 5

	//outbound http pool
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisKeyStore = 0
	RedisOTPStore = 1
	RedisJobStore = 2

	RedisJobStoreTTL = 24 * time.Hour
	RedisPingTimeout = 3 * time.Second
)
