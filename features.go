package main

import (
	"github.com/Unleash/unleash-client-go/v3"
	"github.com/spf13/viper"
)

const (
	featurePostAuskunft = "selbstauskunft.api.post.auskunft"
	featureResume       = "selbstauskunft.api.resume"
	featureFeedback     = "selbstauskunft.api.feedback"
)

// flagsReady is set once the Unleash client has been initialised. Until then
// every flag answers with its fallback.
var flagsReady bool

func initUnleash(listener interface{}) error {
	err := unleash.Initialize(
		unleash.WithListener(listener),
		unleash.WithAppName(viper.GetString("service_name")),
		unleash.WithUrl(viper.GetString("unleash_path")),
	)
	if err != nil {
		return err
	}
	flagsReady = true
	return nil
}

func isEnabled(feature string, fallback bool) bool {
	if !flagsReady {
		return fallback
	}
	return unleash.IsEnabled(feature, unleash.WithFallback(fallback))
}
