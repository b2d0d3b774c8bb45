package logger_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/logger"
)

func TestInit_RejectsMissingNames(t *testing.T) {
	err := logger.Init(logger.Log{LogLevel: "info", AppName: "group-company-admin"})
	if err == nil {
		t.Fatal("expected error for empty service name")
	}

	err = logger.Init(logger.Log{LogLevel: "info", ServiceName: "group-company"})
	if err == nil {
		t.Fatal("expected error for empty app name")
	}

	err = logger.Init(logger.Log{LogLevel: "verbose", ServiceName: "group-company", AppName: "group-company-admin"})
	if err == nil {
		t.Fatal("expected error for unsupported log level")
	}
}

func TestInit_ConsoleOutput(t *testing.T) {
	type testCase struct {
		name         string
		cfg          logger.Log
		wantOutput   bool
		outputIsJSON bool
	}

	testCases := []testCase{
		{
			name: "no writer enabled",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "group-company",
				AppName:     "group-company-admin",
			},
			wantOutput: false,
		},
		{
			name: "console enabled plain json",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "group-company",
				AppName:     "group-company-admin",
				Console:     logger.Console{Enabled: true},
			},
			wantOutput:   true,
			outputIsJSON: true,
		},
		{
			name: "console writer enabled",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "group-company",
				AppName:     "group-company-admin",
				Console:     logger.Console{Enabled: true, UseConsoleWriter: true},
			},
			wantOutput: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := captureLogOutput(t, tc.cfg)

			if tc.wantOutput && out == "" {
				t.Error("expected console output but got none")
			}

			if !tc.wantOutput && out != "" {
				t.Errorf("expected no console output but got: %s", out)
			}

			if tc.outputIsJSON {
				for _, line := range strings.Split(out, "\n") {
					if line == "" {
						continue
					}

					var decoded map[string]any
					if err := json.Unmarshal([]byte(line), &decoded); err != nil {
						t.Errorf("expected json output but got: %s", line)
					}
				}
			}
		})
	}
}

func captureLogOutput(t *testing.T, cfg logger.Log) string {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	r, w, _ := os.Pipe()
	os.Stdout = w
	os.Stderr = w

	if err := logger.Init(cfg); err != nil {
		t.Error(err)
	}

	log.Info().Str("component", "test").Msg("info message")
	log.Warn().Msg("warn message")
	log.Error().Msg("error message")

	outC := make(chan string)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, r); err != nil {
			t.Error(err)
		}
		outC <- buf.String()
	}()

	_ = w.Close()
	os.Stdout = stdout
	os.Stderr = stderr

	return <-outC
}
