package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/viper"
	"github.com/unpuzzle-app/unpuzzle/auth"
	"github.com/unpuzzle-app/unpuzzle/constant"
	"github.com/unpuzzle-app/unpuzzle/internal/sync"
	"github.com/unpuzzle-app/unpuzzle/key"
	"github.com/unpuzzle-app/unpuzzle/log"
	"github.com/unpuzzle-app/unpuzzle/network"
)

// actionsEndpoint is the API path actions are posted to, relative to the
// base URL.
const actionsEndpoint = "agent/actions"

// Dispatcher delivers actions to the agent backend.
type Dispatcher interface {
	Dispatch(action Action) error
}

// HTTPDispatcher posts actions to the platform API, queuing failures for
// background reconciliation so learner activity is never lost offline.
type HTTPDispatcher struct{}

// Dispatch sends a single action. When the agent integration is disabled the
// action is silently discarded.
func (HTTPDispatcher) Dispatch(action Action) error {
	if !viper.GetBool(key.AgentEnable) {
		return nil
	}

	payload, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("encode agent action: %w", err)
	}

	url := viper.GetString(key.APIBaseURL) + "/" + actionsEndpoint
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", constant.UserAgent)
	if token, err := auth.GetToken(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := network.Client.Do(req)
	if err != nil {
		return queueFailed(action, payload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return queueFailed(action, payload, fmt.Errorf("status %d", resp.StatusCode))
	}

	return nil
}

func queueFailed(action Action, payload []byte, cause error) error {
	log.Warnf("agent: dispatch of %s failed: %v", action.Type, cause)
	if err := sync.QueueFailure(actionsEndpoint, string(payload)); err != nil {
		return fmt.Errorf("queue agent action: %w", err)
	}
	return nil
}
