package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.ServiceName != "prediction-league-api" {
		t.Fatalf("unexpected service name: %q", cfg.ServiceName)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr: %q", cfg.HTTPAddr)
	}
	if cfg.DBURL != "" {
		t.Fatalf("expected empty DB_URL by default, got %q", cfg.DBURL)
	}
	if cfg.WindowLookAheadHorizon != 168*time.Hour {
		t.Fatalf("unexpected lookahead horizon: %s", cfg.WindowLookAheadHorizon)
	}
	if cfg.WindowCloseLead != 15*time.Minute {
		t.Fatalf("unexpected close lead: %s", cfg.WindowCloseLead)
	}
	if cfg.WindowScoreDelay != 120*time.Minute {
		t.Fatalf("unexpected score delay: %s", cfg.WindowScoreDelay)
	}
	if cfg.ScoringRetryDelay != 30*time.Minute {
		t.Fatalf("unexpected scoring retry delay: %s", cfg.ScoringRetryDelay)
	}
	if !cfg.WorkerEnabled {
		t.Fatalf("worker must default to enabled")
	}
	if cfg.PushEnabled {
		t.Fatalf("push must default to disabled")
	}
}

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_WindowDurationsMustBePositive(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("WINDOW_CLOSE_LEAD", "-5m")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative WINDOW_CLOSE_LEAD")
	}
}

func TestLoad_BadDurationFormat(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SCHEDULE_INTERVAL", "often")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unparseable SCHEDULE_INTERVAL")
	}
}

func TestLoad_PushRequiresBaseURLWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PUSH_ENABLED", "true")
	t.Setenv("PUSH_BASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PUSH_ENABLED=true without PUSH_BASE_URL")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_WorkerConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvStage)
	t.Setenv("WORKER_POLL_INTERVAL", "2s")
	t.Setenv("WORKER_BATCH_SIZE", "50")
	t.Setenv("WORKER_POOL_SIZE", "4")
	t.Setenv("WORKER_MAX_ATTEMPTS", "3")
	t.Setenv("WORKER_RETRY_BACKOFF", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.WorkerPollInterval != 2*time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.WorkerPollInterval)
	}
	if cfg.WorkerBatchSize != 50 || cfg.WorkerPoolSize != 4 || cfg.WorkerMaxAttempts != 3 {
		t.Fatalf("unexpected worker sizing: batch=%d pool=%d attempts=%d",
			cfg.WorkerBatchSize, cfg.WorkerPoolSize, cfg.WorkerMaxAttempts)
	}
	if cfg.WorkerRetryBackoff != 30*time.Second {
		t.Fatalf("unexpected retry backoff: %s", cfg.WorkerRetryBackoff)
	}
}

func TestLoad_WorkerBatchSizeMustBePositive(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("WORKER_BATCH_SIZE", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for WORKER_BATCH_SIZE=0")
	}
}

func TestLoad_InternalJobTokenTrimmed(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("INTERNAL_JOB_TOKEN", "  job-secret  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.InternalJobToken != "job-secret" {
		t.Fatalf("unexpected token: %q", cfg.InternalJobToken)
	}
}
