package util

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/reconquest/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v3"
)

func TestErrorHandlerRecordsFailedFiles(t *testing.T) {
	handler := NewErrorHandler(true)
	assert.Empty(t, handler.Failed())

	handler.Handle("docs/a.md", errors.New("syntax error"), "unable to parse file %q", "docs/a.md")
	handler.Handle("docs/b.md", nil, "unable to write result of file %q", "docs/b.md")

	assert.Equal(t, []string{"docs/a.md", "docs/b.md"}, handler.Failed())
}

func TestSetLogLevel(t *testing.T) {
	previous := log.GetLevel()
	t.Cleanup(func() {
		log.SetLevel(previous)
	})

	tests := map[string]struct {
		level       string
		want        log.Level
		expectedErr string
	}{
		"default": {want: log.LevelInfo},
		"invalid": {level: "verbose", expectedErr: "unknown log level: verbose"},
		"empty":   {level: "", expectedErr: "unknown log level: "},
		"trace":   {level: "TRACE", want: log.LevelTrace},
		"debug":   {level: "debug", want: log.LevelDebug},
		"warning": {level: "Warning", want: log.LevelWarning},
		"error":   {level: "ERROR", want: log.LevelError},
		"fatal":   {level: "fatal", want: log.LevelFatal},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var err error
			cmd := &cli.Command{
				Flags: flags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					err = SetLogLevel(cmd)
					return nil
				},
			}

			args := []string{"mark-diagram", "--config", filepath.Join(t.TempDir(), "missing.toml")}
			if name != "default" {
				args = append(args, "--log-level", tt.level)
			}

			assert.NoError(t, cmd.Run(context.Background(), args))

			if tt.expectedErr != "" {
				assert.EqualError(t, err, tt.expectedErr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}
