package mqtt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/homeenergy/core/alert"
	"github.com/kilianp07/homeenergy/core/forecast"
	coremon "github.com/kilianp07/homeenergy/core/monitoring"
)

// generateCert writes a self-signed certificate, its key and a CA bundle.
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	caFile = filepath.Join(dir, "ca.pem")
	for path, data := range map[string][]byte{certFile: certPEM, keyFile: keyPEM, caFile: certPEM} {
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return
}

func useMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func sampleAlert() alert.Alert {
	return alert.FromResult(forecast.Result{ID: "abc", Value: 4.5, Baseline: 3, Classification: forecast.High, Input: forecast.DefaultInput()})
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 || tlsCfg.RootCAs == nil {
		t.Fatalf("tls config incomplete")
	}
	if _, err := (Config{UseTLS: true}).LoadTLSConfig(); err == nil {
		t.Fatalf("expected error without files")
	}
}

func TestNewClientOptions(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", Username: "u", Password: "p", StatusTopic: "homeenergy/status"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
	if opts.ClientID == "" {
		t.Fatalf("expected generated client id")
	}
	if !opts.WillEnabled || opts.WillTopic != "homeenergy/status" || string(opts.WillPayload) != "offline" {
		t.Fatalf("will options incorrect")
	}
}

func TestNewAlertPublisher_Validation(t *testing.T) {
	if _, err := NewAlertPublisher(Config{}, "", 0); err == nil {
		t.Fatalf("expected error without broker")
	}
	if _, err := NewAlertPublisher(Config{Broker: "tcp://localhost:1883"}, "", 3); err == nil {
		t.Fatalf("expected error for qos 3")
	}
}

func TestNotifyPublishesJSON(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	p, err := NewAlertPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", StatusTopic: "homeenergy/status"}, "", 1)
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	if p.Topic() != alert.DefaultTopic {
		t.Fatalf("expected default topic, got %s", p.Topic())
	}
	if err := p.Notify(context.Background(), sampleAlert()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	// online status on connect, then the alert
	if len(mc.published) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(mc.published))
	}
	msg := mc.published[1]
	if msg.topic != alert.DefaultTopic || msg.qos != 1 {
		t.Fatalf("unexpected publish %+v", msg)
	}
	var got map[string]any
	if err := json.Unmarshal(msg.payload.([]byte), &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got["classification"] != "HIGH" || got["value_kwh"] != 4.5 {
		t.Fatalf("unexpected payload %v", got)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if last := mc.published[len(mc.published)-1]; last.payload != "offline" {
		t.Fatalf("expected offline status on close, got %v", last.payload)
	}
}

func TestNotifyRetries(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	useMock(t, mc)
	p, err := NewAlertPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1}, "alerts", 0)
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	if err := p.Notify(context.Background(), sampleAlert()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected a retry, got %d publishes", len(mc.published))
	}
}

type recordMonitor struct {
	coremon.NopMonitor
	mu   sync.Mutex
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.mu.Lock()
	r.err, r.tags = err, tags
	r.mu.Unlock()
}

func TestNotifyFailureCaptured(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail}}
	useMock(t, mc)
	mon := &recordMonitor{}
	coremon.Init(mon)
	t.Cleanup(func() { coremon.Init(coremon.NopMonitor{}) })

	p, err := NewAlertPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1}, "alerts", 0)
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	if err := p.Notify(context.Background(), sampleAlert()); err == nil {
		t.Fatalf("expected error")
	}
	if mon.err == nil || mon.tags["module"] != "mqtt" || mon.tags["alert_id"] != "abc" {
		t.Fatalf("error not captured: %+v", mon.tags)
	}
}

func TestConnectError(t *testing.T) {
	mc := &mockClient{connectErr: fmt.Errorf("refused")}
	useMock(t, mc)
	if _, err := NewAlertPublisher(Config{Broker: "tcp://localhost:1883"}, "", 0); err == nil {
		t.Fatalf("expected connect error")
	}
}

type published struct {
	topic   string
	qos     byte
	payload interface{}
}

// mockClient implements pahoClient for tests.
type mockClient struct {
	opts        *paho.ClientOptions
	published   []published
	publishErrs []error
	connectErr  error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.connectErr != nil {
		return &dummyToken{err: m.connectErr}
	}
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	m.published = append(m.published, published{topic, qos, payload})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(string, byte, paho.MessageHandler) paho.Token { return &dummyToken{} }
func (m *mockClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) Unsubscribe(...string) paho.Token        { return &dummyToken{} }
func (m *mockClient) AddRoute(string, paho.MessageHandler)    {}
func (m *mockClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (m *mockClient) IsConnectionOpen() bool                  { return true }

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }
