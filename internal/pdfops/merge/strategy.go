package merge

import (
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
)

// lenientStrategy merges with pdfcpu in relaxed validation mode. Inputs that
// fail even the relaxed readability probe are skipped (or abort the tier in
// strict mode); the surviving inputs are merged in one pass.
type lenientStrategy struct{}

func (s *lenientStrategy) name() string { return "lenient" }

func (s *lenientStrategy) merge(inputs []string, out string, opts Options, logger *logrus.Logger) (*Result, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.CreateBookmarks = opts.Bookmark

	var readable []string
	var failed []FileError

	for _, f := range inputs {
		if err := api.ValidateFile(f, conf); err != nil {
			if !opts.SkipErrors {
				return nil, fmt.Errorf("%s: %w", f, err)
			}
			logger.WithError(err).WithField("file", f).Debug("input not readable, skipping")
			failed = append(failed, FileError{Path: f, Reason: err.Error()})
			continue
		}
		readable = append(readable, f)
	}

	if len(readable) == 0 {
		return nil, errors.New("no readable inputs")
	}

	if err := api.MergeCreateFile(readable, out, false, conf); err != nil {
		return nil, err
	}

	pages, err := api.PageCountFile(out)
	if err != nil {
		return nil, fmt.Errorf("counting output pages: %w", err)
	}

	return &Result{
		TotalFiles:  len(inputs),
		MergedFiles: len(readable),
		TotalPages:  pages,
		FailedFiles: failed,
		Strategy:    s.name(),
		Success:     true,
	}, nil
}

// strictStrategy appends inputs one at a time with pdfcpu in strict
// validation mode. A failing input is rewritten through the reconstruction
// layer and retried when AutoRepair is set; the rewritten temp copy is
// removed before the next input regardless of outcome.
type strictStrategy struct{}

func (s *strictStrategy) name() string { return "standard" }

func (s *strictStrategy) merge(inputs []string, out string, opts Options, logger *logrus.Logger) (*Result, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationStrict
	conf.CreateBookmarks = opts.Bookmark

	var failed []FileError
	merged := 0
	repaired := 0
	started := false

	for _, f := range inputs {
		wasRepaired, err := s.appendInput(f, out, started, opts.AutoRepair, conf, logger)
		if err != nil {
			failed = append(failed, FileError{Path: f, Reason: err.Error()})
			if !opts.SkipErrors {
				// Discard whatever accumulated so the next tier starts clean.
				_ = os.Remove(out)
				return nil, fmt.Errorf("%s: %w", f, err)
			}
			continue
		}
		started = true
		merged++
		if wasRepaired {
			repaired++
		}
	}

	if merged == 0 {
		return nil, errors.New("no inputs merged")
	}

	pages, err := api.PageCountFile(out)
	if err != nil {
		return nil, fmt.Errorf("counting output pages: %w", err)
	}

	return &Result{
		TotalFiles:    len(inputs),
		MergedFiles:   merged,
		RepairedFiles: repaired,
		TotalPages:    pages,
		FailedFiles:   failed,
		Strategy:      s.name(),
		Success:       true,
	}, nil
}

// appendInput copies all pages of f onto out, repairing f first if the
// direct copy fails and autoRepair is set. Reports whether a repair was
// needed for the successful copy.
func (s *strictStrategy) appendInput(f, out string, started, autoRepair bool, conf *model.Configuration, logger *logrus.Logger) (bool, error) {
	directErr := appendFile(f, out, started, conf)
	if directErr == nil {
		return false, nil
	}
	if !autoRepair {
		return false, directErr
	}

	logger.WithError(directErr).WithField("file", f).Debug("direct copy failed, attempting repair")

	repairedPath, err := rebuildToTemp(f)
	if err != nil {
		// Repair itself failed; the original copy error is the useful one.
		return false, directErr
	}
	defer func() { _ = os.RemoveAll(tempDirOf(repairedPath)) }()

	if err := appendFile(repairedPath, out, started, conf); err != nil {
		return false, fmt.Errorf("after repair: %w", err)
	}
	return true, nil
}

// appendFile validates f strictly and copies its pages onto out, creating
// out on the first append.
func appendFile(f, out string, started bool, conf *model.Configuration) error {
	if err := api.ValidateFile(f, conf); err != nil {
		return err
	}
	if !started {
		return api.MergeCreateFile([]string{f}, out, false, conf)
	}
	return api.MergeAppendFile([]string{f}, out, false, conf)
}
