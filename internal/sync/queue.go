// Package sync implements asynchronous background synchronization and offline
// queuing for platform mutations that failed to deliver.
package sync

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/spf13/viper"
	"github.com/unpuzzle-app/unpuzzle/auth"
	"github.com/unpuzzle-app/unpuzzle/filesystem"
	"github.com/unpuzzle-app/unpuzzle/key"
	"github.com/unpuzzle-app/unpuzzle/log"
	"github.com/unpuzzle-app/unpuzzle/util"
	"github.com/unpuzzle-app/unpuzzle/where"
)

// Mutation encapsulates a single failed platform write for deferred delivery:
// an agent action dispatch or a checkpoint mutation.
type Mutation struct {
	Timestamp int64  `json:"timestamp"`
	Endpoint  string `json:"endpoint"`
	Payload   string `json:"payload"`
}

// QueueFailure appends a failed mutation to the local JSON-line queue for
// deferred reconciliation. Endpoint is relative to the API base URL.
func QueueFailure(endpoint, payload string) error {
	if !viper.GetBool(key.AgentQueueFailures) {
		return nil
	}

	f, err := filesystem.API().OpenFile(where.SyncQueue(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	mutation := Mutation{
		Timestamp: time.Now().Unix(),
		Endpoint:  endpoint,
		Payload:   payload,
	}

	encoder := json.NewEncoder(f)
	return encoder.Encode(mutation)
}

// Pending reads the queued mutations without consuming them. Entries that
// fail to decode are skipped.
func Pending() []Mutation {
	content, err := filesystem.API().ReadFile(where.SyncQueue())
	if err != nil || len(content) == 0 {
		return nil
	}

	var mutations []Mutation
	decoder := json.NewDecoder(bytes.NewReader(content))
	for decoder.More() {
		var m Mutation
		if err := decoder.Decode(&m); err == nil {
			mutations = append(mutations, m)
		}
	}
	return mutations
}

// replayBackoff returns the delay before replaying the i-th queued mutation:
// exponential with randomized jitter to avoid hammering a recovering backend,
// with the exponent capped so a long queue never stalls a reconciliation pass
// for hours.
func replayBackoff(i int) time.Duration {
	exp := util.Min(i, 5)
	return time.Duration((1<<exp)*100)*time.Millisecond + time.Duration(rand.Intn(100))*time.Millisecond
}

// ReconcileFailures initializes an asynchronous background process that
// replays previously failed mutations against the platform API. The queue is
// truncated only when every replay succeeds, so partial failures retry on
// the next run.
func ReconcileFailures() {
	go func() {
		mutations := Pending()
		if len(mutations) == 0 {
			return
		}

		client := &http.Client{Timeout: 10 * time.Second}
		baseURL := viper.GetString(key.APIBaseURL)
		successCount := 0

		for i, m := range mutations {
			time.Sleep(replayBackoff(i))

			req, err := http.NewRequest(http.MethodPost, baseURL+"/"+m.Endpoint, bytes.NewBufferString(m.Payload))
			if err != nil {
				continue
			}

			if token, err := auth.GetToken(); err == nil && token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept", "application/json")

			resp, err := client.Do(req)
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					successCount++
				}
			}
		}

		if successCount == len(mutations) {
			if err := filesystem.API().Remove(where.SyncQueue()); err != nil {
				log.Warnf("sync: failed to clear the mutation queue: %v", err)
			}
		} else {
			log.Warnf("sync: %d of %d queued mutations still pending", len(mutations)-successCount, len(mutations))
		}
	}()
}
