package logging

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		appEnv string
	}{
		{name: "production_default", appEnv: ""},
		{name: "development", appEnv: "development"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.appEnv)

			logger, err := New("payment-api")
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if logger == nil {
				t.Fatal("expected a logger")
			}
			logger.Info("startup check")
		})
	}
}
