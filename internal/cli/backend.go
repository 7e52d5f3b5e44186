// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/pdiddy/docflow/internal/container"
	"github.com/pdiddy/docflow/internal/convert"
	"github.com/pdiddy/docflow/internal/history"
	"github.com/pdiddy/docflow/internal/office"
	"github.com/pdiddy/docflow/pkg/types"
)

// newBackend constructs the converter for op from cfg.
func newBackend(cfg types.Config, op types.Operation) (convert.Converter, error) {
	target := office.TargetPDF
	if op == types.OpPDFToDOCX {
		target = office.TargetDOCX
	}

	switch cfg.Backend {
	case types.BackendSoffice, "":
		o, err := office.New(cfg.Soffice.Path)
		if err != nil {
			return nil, err
		}
		return convert.NewOfficeConverter(o, target), nil
	case types.BackendContainer:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return convert.NewContainerConverter(rt, cfg.Container.Image, target)
	case types.BackendGotenberg:
		if cfg.Gotenberg.URL == "" {
			return nil, fmt.Errorf("gotenberg backend needs gotenberg.url")
		}
		return convert.NewGotenbergConverter(&http.Client{}, cfg.Gotenberg.URL, cfg.Gotenberg.MaxRetries), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want soffice, container, or gotenberg)", cfg.Backend)
	}
}

// backendFactory lets tests replace backend construction.
var backendFactory = newBackend

// lazyConverter defers backend construction to the first conversion so that
// a missing input is reported before any attempt to find LibreOffice. Each
// conversion runs under timeout when it is positive.
type lazyConverter struct {
	cfg     types.Config
	op      types.Operation
	verify  bool
	once    sync.Once
	backend convert.Converter
	err     error
}

func (l *lazyConverter) Convert(ctx context.Context, inPath, outPath string) error {
	l.once.Do(func() {
		l.backend, l.err = backendFactory(l.cfg, l.op)
	})
	if l.err != nil {
		return l.err
	}

	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}

	if err := l.backend.Convert(ctx, inPath, outPath); err != nil {
		return err
	}
	if l.verify {
		if _, err := convert.VerifyPDF(outPath); err != nil {
			return err
		}
	}
	return nil
}

// recorder appends finished jobs to the history journal when enabled.
// Journal failures are warnings; they never change a job's outcome.
type recorder struct {
	cfg types.HistoryConfig
}

func (r recorder) record(ctx context.Context, results ...types.JobResult) {
	if !r.cfg.Enabled || len(results) == 0 {
		return
	}
	store, err := history.Open(r.cfg.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history unavailable: %v\n", err)
		return
	}
	defer store.Close()

	for _, res := range results {
		if err := store.Record(ctx, history.EntryFromResult(res)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
}

// statusOf maps a job error to its recorded status.
func statusOf(err error) types.JobStatus {
	if err != nil {
		return types.JobFailed
	}
	return types.JobConverted
}
