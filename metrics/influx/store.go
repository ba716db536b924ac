package influx

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mklimuk/pulse/metrics"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/spf13/afero"
)

// Store writes metric records to an influxdb v2 instance. It implements
// metrics.Client; every record becomes one point written synchronously
// through the blocking write API.
type Store struct {
	addr   string
	org    string
	bucket string
	client influxdb2.Client
	probe  *probeClient
	writer api.WriteAPIBlocking
	logger Logger
}

func NewStore(addr, org, bucket, token string, logger Logger) *Store {
	client := influxdb2.NewClient(addr, token)
	return &Store{
		addr:   addr,
		org:    org,
		bucket: bucket,
		client: client,
		writer: client.WriteAPIBlocking(org, bucket),
		probe: &probeClient{
			addr:       addr,
			token:      token,
			httpClient: http.Client{Timeout: 4 * time.Second},
		},
		logger: logger,
	}
}

func (s *Store) WriteMetric(ctx context.Context, rec metrics.Record) error {
	point := influxdb2.NewPointWithMeasurement(rec.Name)
	for _, t := range rec.Tags() {
		point.AddTag(t.Key, t.Value)
	}
	for _, f := range rec.Fields() {
		point.AddField(f.Key, f.Value)
	}
	point.SetTime(time.Now())
	err := s.writer.WritePoint(ctx, point)
	if err != nil {
		return fmt.Errorf("could not write `%s` measurement: %w", rec.Name, err)
	}
	return nil
}

func (s *Store) GetToken() string {
	return s.probe.token
}

func (s *Store) NeedSetup(ctx context.Context) (bool, error) {
	if s.probe.token != "" {
		return false, nil
	}
	need, err := s.probe.NeedSetup(ctx)
	if err != nil {
		return false, fmt.Errorf("could not check setup requirements: %w", err)
	}
	return need, nil
}

type Status struct {
	SetupRequired bool
	Ready         bool
	Healthy       bool
}

func (s *Store) GetStatus(ctx context.Context) (Status, error) {
	needSetup, err := s.NeedSetup(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("setup check failed: %w", err)
	}
	status := Status{
		SetupRequired: needSetup,
	}
	if status.SetupRequired {
		return status, nil
	}
	err = s.probe.Ready(ctx)
	if err == nil {
		status.Ready = true
	}
	err = s.probe.Health(ctx)
	if err == nil {
		status.Healthy = true
	}
	return status, nil
}

// Setup initializes a fresh influx instance and persists the returned token.
// The data-path client is rebuilt with the new token.
func (s *Store) Setup(ctx context.Context, username, password string, retentionPeriod time.Duration, tokenLocation string, fs afero.Fs) error {
	token, err := s.probe.Setup(username, password, s.org, s.bucket, retentionPeriod)
	if err != nil {
		return fmt.Errorf("could not setup influx database: %w", err)
	}
	s.probe.token = token
	s.client.Close()
	s.client = influxdb2.NewClient(s.addr, token)
	s.writer = s.client.WriteAPIBlocking(s.org, s.bucket)
	err = SaveToken(tokenLocation, token, fs)
	if err != nil {
		return fmt.Errorf("could not save influx token [%s]: %w", token, err)
	}
	s.logger.Infof("influx token saved to %s", tokenLocation)
	return nil
}

func (s *Store) Close() {
	s.client.Close()
}

func ReadToken(tokenLocation string, fs afero.Fs) (string, error) {
	tok, err := afero.ReadFile(fs, tokenLocation)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("could not read token: %w", err)
	}
	return strings.TrimSpace(string(tok)), nil
}

func SaveToken(tokenLocation, token string, fs afero.Fs) error {
	file, err := fs.OpenFile(tokenLocation, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("could not open token file: %w", err)
	}
	defer func() { _ = file.Close() }()
	_, err = file.Write([]byte(token))
	if err != nil {
		return fmt.Errorf("could not write token file: %w", err)
	}
	return nil
}
