package influx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Logger interface {
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
}

// probeClient talks to the influx management endpoints directly. The data
// path goes through the official client; setup and liveness probing do not
// need it.
type probeClient struct {
	httpClient http.Client
	addr       string
	token      string
}

func (c *probeClient) Ready(ctx context.Context) error {
	_, err := c.getWithBackoff(ctx, c.addr+"/api/v2/ready")
	if err != nil {
		return err
	}
	// no error means http.StatusOK
	return nil
}

func (c *probeClient) Health(ctx context.Context) error {
	_, err := c.getWithBackoff(ctx, c.addr+"/api/v2/health")
	if err != nil {
		return err
	}
	// no error means http.StatusOK
	return nil
}

func (c *probeClient) getWithBackoff(ctx context.Context, url string) (*http.Response, error) {
	back := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(3*time.Second), 20), ctx)
	var res *http.Response
	err := backoff.Retry(func() error {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if c.token != "" {
			req.Header.Add("Authorization", fmt.Sprintf("Token %s", c.token))
		}
		response, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		if response.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code (%d)", response.StatusCode)
		}
		res = response
		return nil
	}, back)
	return res, err
}

func (c *probeClient) NeedSetup(ctx context.Context) (bool, error) {
	resp, err := c.getWithBackoff(ctx, c.addr+"/api/v2/setup")
	if err != nil {
		return false, fmt.Errorf("error during setup check: %w", err)
	}
	status := struct {
		Allowed bool `json:"allowed"`
	}{}
	dec := json.NewDecoder(resp.Body)
	defer func() { _ = resp.Body.Close() }()
	err = dec.Decode(&status)
	if err != nil {
		return false, fmt.Errorf("could not decode response: %w", err)
	}
	return status.Allowed, nil
}

func (c *probeClient) Setup(username, password, org, bucket string, retention time.Duration) (string, error) {
	setup := struct {
		Username        string `json:"username"`
		Password        string `json:"password"`
		Org             string `json:"org"`
		Bucket          string `json:"bucket"`
		RetentionPeriod int64  `json:"retentionPeriodSeconds"`
	}{
		Username:        username,
		Password:        password,
		Org:             org,
		Bucket:          bucket,
		RetentionPeriod: int64(retention.Seconds()),
	}
	body, _ := json.Marshal(setup)
	req, _ := http.NewRequest(http.MethodPost, c.addr+"/api/v2/setup", bytes.NewBuffer(body))
	req.Header.Add("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error during setup call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected setup call response status code (%d)", resp.StatusCode)
	}
	token := struct {
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
	}{}
	dec := json.NewDecoder(resp.Body)
	err = dec.Decode(&token)
	if err != nil {
		return "", fmt.Errorf("could not decode auth token: %w", err)
	}
	return token.Auth.Token, nil
}
