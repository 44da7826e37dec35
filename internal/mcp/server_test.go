package mcp

import (
	"context"
	"testing"

	"github.com/firebase/genkit/go/genkit"

	"github.com/owenlin0/coursechat/internal/tools"
)

func TestNewServer_Validation(t *testing.T) {
	g := genkit.Init(context.Background())
	registry := tools.NewRegistry()
	tools.RegisterSearch(registry, g, nil)
	tools.RegisterOutline(registry, g, nil)

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{Name: "coursechat", Version: "1.0.0", Registry: registry}},
		{name: "missing name", cfg: Config{Version: "1.0.0", Registry: registry}, wantErr: true},
		{name: "missing version", cfg: Config{Name: "coursechat", Registry: registry}, wantErr: true},
		{name: "missing registry", cfg: Config{Name: "coursechat", Version: "1.0.0"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewServer(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewServer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
