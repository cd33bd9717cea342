package runner

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/asaply/orderflow/internal/artifact"
	"github.com/asaply/orderflow/internal/engine"
	"github.com/asaply/orderflow/internal/merchant"
	"github.com/asaply/orderflow/internal/plan"
	"github.com/asaply/orderflow/internal/session"
)

// LiveExecutor runs plans against a real browser over CDP. One session per
// run, closed on every exit path.
type LiveExecutor struct {
	CDPBaseURL     string
	RenderDelay    time.Duration
	WaitTimeout    time.Duration
	ExecuteTimeout time.Duration
	Artifacts      artifact.Store
	Logger         *log.Logger
}

func (x *LiveExecutor) ExecuteRun(ctx context.Context, runID string, cfg *merchant.Config, p plan.Plan) (engine.Outcome, string, error) {
	timeout := x.ExecuteTimeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sess, err := session.Open(runCtx, cfg.BaseURL, session.Options{
		CDPBaseURL:  x.CDPBaseURL,
		RenderDelay: x.RenderDelay,
		WaitTimeout: x.WaitTimeout,
	})
	if err != nil {
		return engine.Outcome{}, "", err
	}
	defer sess.Close()

	outcome, execErr := engine.New(sess, x.Logger).Execute(runCtx, cfg, p)

	screenshotURL := ""
	if x.Artifacts != nil {
		if encoded, shotErr := sess.Screenshot(runCtx); shotErr == nil && strings.TrimSpace(encoded) != "" {
			url, saveErr := x.Artifacts.SaveScreenshotBase64(runCtx, runID, encoded)
			if saveErr != nil && x.Logger != nil {
				x.Logger.Printf("run %s screenshot save failed: %v", runID, saveErr)
			} else if saveErr == nil {
				screenshotURL = url
			}
		}
	}

	return outcome, screenshotURL, execErr
}
