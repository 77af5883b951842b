package main

import "github.com/spf13/viper"

func setDefaults() {
	viper.SetDefault("service_name", "drk-selbstauskunft")
	viper.SetDefault("app_version", "dev")
	viper.SetDefault("listen_port", "8080")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("schema_path", "")
	viper.SetDefault("resume_base_url", "")
	viper.SetDefault("timezone", "Europe/Berlin")
	viper.SetDefault("max_body_bytes", 1<<20)
	viper.SetDefault("qr_size", 100)
	viper.SetDefault("unleash_enabled", true)
	viper.SetDefault("unleash_path", "http://localhost:4242/api")
	viper.SetDefault("database_uri", "")
	viper.SetDefault("feedback_instance_id", "")
	viper.SetDefault("feedback_notify_url", "")
	viper.SetDefault("feedback_notify_timeout", "5s")
	viper.SetDefault("shutdown_timeout", "10s")
}
