package config

import (
	"encoding/json"
	"fmt"
)

// AllMethods is the stored sentinel meaning every payment method is enabled.
const AllMethods = "-1"

// GatewaySettings is a merchant's Payssion configuration, decoded from the
// JSON blob the host persists for the gateway. Decoding validates up front:
// a missing key must block payment creation, not surface later as an empty
// signature input.
type GatewaySettings struct {
	APIKey    string `json:"api_key"`
	SecretKey string `json:"secret_key"`

	// EnabledMethods holds the merchant's enabled payment method codes.
	// Empty together with AllEnabled means nothing is offered.
	EnabledMethods []string `json:"-"`

	// AllEnabled is set when the stored payment_methods value is the
	// "-1" sentinel.
	AllEnabled bool `json:"-"`
}

// settingsBlob matches the persisted layout: payment_methods is either the
// literal "-1" (or -1) or an array of method codes.
type settingsBlob struct {
	APIKey         string          `json:"api_key"`
	SecretKey      string          `json:"secret_key"`
	PaymentMethods json.RawMessage `json:"payment_methods"`
}

// DecodeGatewaySettings parses and validates a persisted settings blob.
func DecodeGatewaySettings(data []byte) (*GatewaySettings, error) {
	var blob settingsBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("failed to decode gateway settings: %w", err)
	}

	settings := &GatewaySettings{
		APIKey:    blob.APIKey,
		SecretKey: blob.SecretKey,
	}

	if len(blob.PaymentMethods) > 0 {
		all, methods, err := parsePaymentMethods(blob.PaymentMethods)
		if err != nil {
			return nil, err
		}
		settings.AllEnabled = all
		settings.EnabledMethods = methods
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// GatewaySettingsFromMap builds settings from a configuration map, the form
// the gateway registry hands to factories.
func GatewaySettingsFromMap(conf map[string]string) (*GatewaySettings, error) {
	settings := &GatewaySettings{
		APIKey:    conf["apiKey"],
		SecretKey: conf["secretKey"],
	}

	switch pm := conf["paymentMethods"]; pm {
	case "", AllMethods:
		settings.AllEnabled = true
	default:
		all, methods, err := parsePaymentMethods([]byte(pm))
		if err != nil {
			return nil, err
		}
		settings.AllEnabled = all
		settings.EnabledMethods = methods
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// ConfigMap renders the settings in the flat map form gateway factories
// consume.
func (s *GatewaySettings) ConfigMap() map[string]string {
	pm := AllMethods
	if !s.AllEnabled {
		encoded, _ := json.Marshal(s.EnabledMethods)
		pm = string(encoded)
	}

	return map[string]string{
		"apiKey":         s.APIKey,
		"secretKey":      s.SecretKey,
		"paymentMethods": pm,
	}
}

// Validate fails fast on missing keys.
func (s *GatewaySettings) Validate() error {
	if s.APIKey == "" {
		return fmt.Errorf("gateway settings: api_key is required")
	}
	if s.SecretKey == "" {
		return fmt.Errorf("gateway settings: secret_key is required")
	}
	return nil
}

func parsePaymentMethods(raw []byte) (all bool, methods []string, err error) {
	// The sentinel appears as both -1 and "-1" in stored blobs.
	var sentinel any
	if err := json.Unmarshal(raw, &sentinel); err != nil {
		return false, nil, fmt.Errorf("failed to decode payment_methods: %w", err)
	}

	switch v := sentinel.(type) {
	case float64:
		if v == -1 {
			return true, nil, nil
		}
		return false, nil, fmt.Errorf("unexpected payment_methods value: %v", v)
	case string:
		if v == AllMethods {
			return true, nil, nil
		}
		return false, nil, fmt.Errorf("unexpected payment_methods value: %q", v)
	case []any:
		methods = make([]string, 0, len(v))
		for _, item := range v {
			code, ok := item.(string)
			if !ok {
				return false, nil, fmt.Errorf("payment_methods entries must be strings, got %T", item)
			}
			methods = append(methods, code)
		}
		return false, methods, nil
	default:
		return false, nil, fmt.Errorf("unexpected payment_methods type %T", sentinel)
	}
}
