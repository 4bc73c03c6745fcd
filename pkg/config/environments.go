package config

func loadDevelopmentConfig(cfg *Config) {
	cfg.Environment = "development"
	cfg.DatabaseDebug = true
	cfg.ExposeInternalErrors = true
	cfg.ServerHost = "127.0.0.1"
}

func loadTestConfig(cfg *Config) {
	cfg.Environment = "test"
	cfg.BackendURL = "http://127.0.0.1:3689"
	cfg.BackendAnonKey = "test-anon-key"
	cfg.DatabaseConnectRetryCount = 1
	cfg.DatabaseConnectRetryDelay = 0
	cfg.DatabaseURL = ":memory:"
	cfg.IdentityDriver = IdentityDriverLocal
	cfg.JWTSecret = "test-secret"
	cfg.ServerHost = "127.0.0.1"
	cfg.StorageDriver = StorageDriverLocal
}

func loadProductionConfig(cfg *Config) {
	cfg.Environment = "production"
	cfg.ExposeInternalErrors = false
}
