package monitor

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Notifier delivers alert text to a messaging integration. The Slack
// connector and Telegram client both implement it.
type Notifier interface {
	Notify(ctx context.Context, title, message string, level Level) error
	Name() string
}

// AlertRule describes a threshold check against a stored metric.
// Window and Cooldown are parsed from the YAML duration strings in Validate.
type AlertRule struct {
	Name        string  `yaml:"name"`
	Metric      string  `yaml:"metric"`     // "error_rate" or "invocations"
	AgentID     string  `yaml:"agent_id"`   // error_rate only
	Mode        string  `yaml:"mode"`       // invocations only
	Comparison  string  `yaml:"comparison"` // "gt" or "lt"
	Threshold   float64 `yaml:"threshold"`
	WindowStr   string  `yaml:"window"`
	CooldownStr string  `yaml:"cooldown"`

	Window   time.Duration `yaml:"-"`
	Cooldown time.Duration `yaml:"-"`
}

// Validate checks rule fields, parses durations, and applies defaults.
func (r *AlertRule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("alert rule name cannot be empty")
	}
	if r.WindowStr != "" {
		window, err := time.ParseDuration(r.WindowStr)
		if err != nil {
			return fmt.Errorf("alert rule %q: invalid window: %w", r.Name, err)
		}
		r.Window = window
	}
	if r.CooldownStr != "" {
		cooldown, err := time.ParseDuration(r.CooldownStr)
		if err != nil {
			return fmt.Errorf("alert rule %q: invalid cooldown: %w", r.Name, err)
		}
		r.Cooldown = cooldown
	}
	switch r.Metric {
	case "error_rate":
		if r.AgentID == "" {
			return fmt.Errorf("alert rule %q: agent_id is required for error_rate", r.Name)
		}
	case "invocations":
		if r.Mode == "" {
			return fmt.Errorf("alert rule %q: mode is required for invocations", r.Name)
		}
	default:
		return fmt.Errorf("alert rule %q: unsupported metric %q", r.Name, r.Metric)
	}
	switch r.Comparison {
	case "gt", "lt":
	case "":
		r.Comparison = "gt"
	default:
		return fmt.Errorf("alert rule %q: unsupported comparison %q", r.Name, r.Comparison)
	}
	if r.Window <= 0 {
		r.Window = time.Hour
	}
	if r.Cooldown <= 0 {
		r.Cooldown = 15 * time.Minute
	}
	return nil
}

// Triggered reports whether value breaches the rule threshold.
func (r *AlertRule) Triggered(value float64) bool {
	if r.Comparison == "lt" {
		return value < r.Threshold
	}
	return value > r.Threshold
}

type alertRulesFile struct {
	Rules []AlertRule `yaml:"rules"`
}

// LoadAlertRules reads and validates alert rules from a YAML file.
func LoadAlertRules(path string) ([]AlertRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alert rules: %w", err)
	}

	var file alertRulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse alert rules: %w", err)
	}

	for i := range file.Rules {
		if err := file.Rules[i].Validate(); err != nil {
			return nil, err
		}
	}
	return file.Rules, nil
}

// AlertEvaluator periodically checks rules against the metrics store and
// dispatches breaches to registered notifiers.
type AlertEvaluator struct {
	store     *Store
	logger    *Logger
	rules     []AlertRule
	notifiers []Notifier
	interval  time.Duration

	mu        sync.Mutex
	lastFired map[string]time.Time
}

// NewAlertEvaluator builds an evaluator over the given store and rules.
func NewAlertEvaluator(store *Store, logger *Logger, rules []AlertRule, interval time.Duration) *AlertEvaluator {
	if interval <= 0 {
		interval = time.Minute
	}
	return &AlertEvaluator{
		store:     store,
		logger:    logger,
		rules:     rules,
		interval:  interval,
		lastFired: make(map[string]time.Time),
	}
}

// AddNotifier registers a delivery target for fired alerts.
func (e *AlertEvaluator) AddNotifier(n Notifier) {
	e.notifiers = append(e.notifiers, n)
}

// Run evaluates rules on a ticker until the context is cancelled.
func (e *AlertEvaluator) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.EvaluateOnce(ctx)
		}
	}
}

// EvaluateOnce checks every rule once, honoring per-rule cooldowns.
func (e *AlertEvaluator) EvaluateOnce(ctx context.Context) {
	for i := range e.rules {
		rule := e.rules[i]

		value, err := e.metricValue(&rule)
		if err != nil {
			log.Printf("monitor: alert rule %q: %v", rule.Name, err)
			continue
		}
		if !rule.Triggered(value) {
			continue
		}

		e.mu.Lock()
		last, seen := e.lastFired[rule.Name]
		if seen && time.Since(last) < rule.Cooldown {
			e.mu.Unlock()
			continue
		}
		e.lastFired[rule.Name] = time.Now()
		e.mu.Unlock()

		e.fire(ctx, &rule, value)
	}
}

func (e *AlertEvaluator) metricValue(rule *AlertRule) (float64, error) {
	switch rule.Metric {
	case "error_rate":
		return e.store.ErrorRate(rule.AgentID, rule.Window)
	case "invocations":
		total, err := e.store.GetTotalByMode(Mode(rule.Mode))
		return float64(total), err
	default:
		return 0, fmt.Errorf("unsupported metric %q", rule.Metric)
	}
}

func (e *AlertEvaluator) fire(ctx context.Context, rule *AlertRule, value float64) {
	title := fmt.Sprintf("alert: %s", rule.Name)
	message := fmt.Sprintf("%s is %.3f (threshold %s %.3f)", rule.Metric, value, rule.Comparison, rule.Threshold)

	if e.logger != nil {
		ev := NewEvent("alert-evaluator", EventAlert, LevelWarning, message).WithMetadata(map[string]interface{}{
			"rule":      rule.Name,
			"metric":    rule.Metric,
			"value":     value,
			"threshold": rule.Threshold,
		})
		if err := e.logger.LogEvent(ev); err != nil {
			log.Printf("monitor: failed to log alert event: %v", err)
		}
	}

	for _, n := range e.notifiers {
		if err := n.Notify(ctx, title, message, LevelWarning); err != nil {
			log.Printf("monitor: notifier %s failed for rule %q: %v", n.Name(), rule.Name, err)
		}
	}
}
