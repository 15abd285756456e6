// Package publish deploys finished PMML documents to an Openscoring-style
// scoring engine over REST.
package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// ErrEmptyModelID is returned when a deployment has no model id.
var ErrEmptyModelID = errors.New("model id is required")

// MetricsInterface defines the metrics the publisher reports.
type MetricsInterface interface {
	PublishInc()
	PublishFailuresInc()
}

// Client talks to the scoring engine rooted at base.
type Client struct {
	base    string
	rest    *resty.Client
	metrics MetricsInterface
}

// Deployment is the engine's description of a deployed model.
type Deployment struct {
	ID             string `json:"id"`
	MiningFunction string `json:"miningFunction"`
	Summary        string `json:"summary"`
}

func NewClient(base string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second) // default fallback
	}
	return &Client{base: strings.TrimRight(base, "/"), rest: r}
}

// SetMetrics attaches publish counters; m may be nil.
func (c *Client) SetMetrics(m MetricsInterface) {
	c.metrics = m
}

// Deploy uploads document as model modelID, replacing any previous version.
func (c *Client) Deploy(ctx context.Context, modelID string, document []byte) (*Deployment, error) {
	if modelID == "" {
		return nil, ErrEmptyModelID
	}

	dep := &Deployment{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/xml").
		SetHeader("Accept", "application/json").
		SetBody(document).
		SetResult(dep).
		Put(c.modelURL(modelID))
	if err != nil {
		c.failed()
		return nil, fmt.Errorf("deploy %s: request failed: %w", modelID, err)
	}
	if resp.IsError() {
		c.failed()
		return nil, fmt.Errorf("deploy %s: status %d, body: %s", modelID, resp.StatusCode(), resp.String())
	}

	if dep.ID == "" {
		dep.ID = modelID
	}
	if c.metrics != nil {
		c.metrics.PublishInc()
	}
	log.Info().Str("model_id", dep.ID).Int("status", resp.StatusCode()).Msg("PMML document deployed")
	return dep, nil
}

// Undeploy removes model modelID. A model that does not exist is not an error.
func (c *Client) Undeploy(ctx context.Context, modelID string) error {
	if modelID == "" {
		return ErrEmptyModelID
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		Delete(c.modelURL(modelID))
	if err != nil {
		return fmt.Errorf("undeploy %s: request failed: %w", modelID, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		log.Debug().Str("model_id", modelID).Msg("Model was not deployed")
		return nil
	}
	if resp.IsError() {
		return fmt.Errorf("undeploy %s: status %d, body: %s", modelID, resp.StatusCode(), resp.String())
	}
	log.Info().Str("model_id", modelID).Msg("PMML document undeployed")
	return nil
}

func (c *Client) modelURL(modelID string) string {
	return c.base + "/model/" + url.PathEscape(modelID)
}

func (c *Client) failed() {
	if c.metrics != nil {
		c.metrics.PublishFailuresInc()
	}
}
