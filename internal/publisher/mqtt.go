package publisher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jgoulah/hashfuture/internal/config"
	"github.com/jgoulah/hashfuture/pkg/models"
)

// Publisher pushes projections to MQTT and/or the Home Assistant REST API
type Publisher struct {
	client       mqtt.Client
	topicPrefix  string
	haConfig     config.HAConfig
	entityPrefix string
	httpClient   *http.Client
}

// New creates a new publisher (supports both MQTT and HA HTTP API)
func New(cfg *config.Config) (*Publisher, error) {
	mqttCfg, haCfg := cfg.MQTT, cfg.HomeAssistant

	if !mqttCfg.Enabled && !haCfg.Enabled {
		return nil, fmt.Errorf("neither MQTT nor Home Assistant is enabled in config")
	}

	// Validate HA config if enabled
	if haCfg.Enabled {
		if haCfg.URL == "" {
			return nil, fmt.Errorf("Home Assistant URL is required when enabled")
		}
		if haCfg.Token == "" {
			return nil, fmt.Errorf("Home Assistant token is required when enabled")
		}
	}

	var client mqtt.Client
	if mqttCfg.Enabled {
		if mqttCfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required when enabled")
		}

		opts := mqtt.NewClientOptions()
		opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
		opts.SetClientID("hashfuture")
		opts.SetAutoReconnect(true)
		opts.SetConnectRetry(true)
		opts.SetConnectTimeout(10 * time.Second)

		if mqttCfg.Username != "" {
			opts.SetUsername(mqttCfg.Username)
		}
		if mqttCfg.Password != "" {
			opts.SetPassword(mqttCfg.Password)
		}

		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
		}
	}

	return &Publisher{
		client:       client,
		topicPrefix:  cfg.GetTopicPrefix(),
		haConfig:     haCfg,
		entityPrefix: cfg.GetEntityPrefix(),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// State is the retained MQTT payload and the Home Assistant attribute set
type State struct {
	Product          models.Product `json:"product"`
	InvestedUSD      float64        `json:"invested_usd"`
	PowerHS          float64        `json:"power_hs"`
	ProfitUSD        float64        `json:"profit_usd"`
	ProfitPerDayUSD  float64        `json:"profit_per_day_usd"`
	DaysLeft         *int           `json:"days_left"`
	FixDate          string         `json:"fix_date,omitempty"`
	DaysLeftTrend    *int           `json:"days_left_trend"`
	FixDateTrend     string         `json:"fix_date_trend,omitempty"`
	InsufficientData bool           `json:"insufficient_data"`
	LastPayout       string         `json:"last_payout,omitempty"`
}

// NewState flattens a projection
func NewState(p *models.Projection) State {
	s := State{
		Product:          p.Product,
		InvestedUSD:      round2(p.InvestedUSD),
		PowerHS:          p.PowerHS,
		ProfitUSD:        round2(p.CumulativeProfitUSD),
		ProfitPerDayUSD:  round2(p.AverageProfitPerDayUSD),
		InsufficientData: p.InsufficientData,
	}
	if !p.ReferenceTime.IsZero() {
		s.LastPayout = p.ReferenceTime.Format(time.RFC3339)
	}
	if p.Average != nil {
		days := p.Average.DaysLeft
		s.DaysLeft = &days
		s.FixDate = p.Average.FixDate.Format("2006-01-02")
	}
	if p.Extrapolated != nil {
		days := p.Extrapolated.DaysLeft
		s.DaysLeftTrend = &days
		s.FixDateTrend = p.Extrapolated.FixDate.Format("2006-01-02")
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Slug turns a product into a topic/entity-safe name, e.g. "SHA-256" -> "sha_256"
func Slug(product models.Product) string {
	return strings.ReplaceAll(strings.ToLower(string(product)), "-", "_")
}

// Publish sends a projection to every enabled target
func (p *Publisher) Publish(proj *models.Projection) error {
	state := NewState(proj)

	if p.client != nil {
		if err := p.publishMQTT(state); err != nil {
			return err
		}
	}
	if p.haConfig.Enabled {
		if err := p.publishHA(state); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publishMQTT(state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	topic := fmt.Sprintf("%s/%s/state", p.topicPrefix, Slug(state.Product))
	token := p.client.Publish(topic, 1, true, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publishing to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// HAState is the body of POST /api/states/<entity_id>
type HAState struct {
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// EntityID returns the Home Assistant sensor for a product
func (p *Publisher) EntityID(product models.Product) string {
	return fmt.Sprintf("%s_%s_days_left", p.entityPrefix, Slug(product))
}

func (p *Publisher) publishHA(state State) error {
	apiURL := fmt.Sprintf("%s/api/states/%s", strings.TrimSuffix(p.haConfig.URL, "/"), p.EntityID(state.Product))

	value := "unknown"
	if state.DaysLeft != nil {
		value = fmt.Sprintf("%d", *state.DaysLeft)
	}

	body, err := json.Marshal(HAState{
		State: value,
		Attributes: map[string]any{
			"unit_of_measurement": "d",
			"friendly_name":       fmt.Sprintf("Hashflare %s days to break-even", state.Product),
			"icon":                "mdi:pickaxe",
			"invested_usd":        state.InvestedUSD,
			"power_hs":            state.PowerHS,
			"profit_usd":          state.ProfitUSD,
			"profit_per_day_usd":  state.ProfitPerDayUSD,
			"fix_date":            state.FixDate,
			"days_left_trend":     state.DaysLeftTrend,
			"fix_date_trend":      state.FixDateTrend,
			"insufficient_data":   state.InsufficientData,
		},
	})
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequest("POST", apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	// 201 on first creation of the entity, 200 afterwards
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
