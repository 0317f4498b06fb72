package obs

import (
	"context"
	"testing"
)

func TestInitTracer_DisabledWithoutEndpoint(t *testing.T) {
	t.Parallel()

	shutdown, err := InitTracer(context.Background(), TracerConfig{ServiceName: "lectio-api"})
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected a shutdown function")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
