package payssion

import "github.com/flawlesshq/payssion-gateway/gateway"

// Register the Payssion gateway with the default registry
func init() {
	gateway.Register("payssion", NewFromConfig)
}
