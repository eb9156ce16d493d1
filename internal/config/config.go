/**
 * @description
 * This file handles configuration management for the booking service. It
 * uses the 'viper' library to load configuration from environment variables,
 * providing a centralized and consistent way to manage application settings.
 */

package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort                        string  `mapstructure:"SERVER_PORT"`
	DatabaseURL                       string  `mapstructure:"DATABASE_URL"`
	RedisURL                          string  `mapstructure:"REDIS_URL"`
	CouponCachePrefix                 string  `mapstructure:"COUPON_CACHE_PREFIX"`
	CouponCacheTTLSeconds             int     `mapstructure:"COUPON_CACHE_TTL_SECONDS"`
	RabbitMQURL                       string  `mapstructure:"RABBITMQ_URL"`
	NotificationExchange              string  `mapstructure:"NOTIFICATION_EXCHANGE"`
	JWTSecret                         string  `mapstructure:"JWT_SECRET"`
	BookingTimezone                   string  `mapstructure:"BOOKING_TIMEZONE"`
	LifecycleJobSchedule              string  `mapstructure:"LIFECYCLE_JOB_SCHEDULE"`
	AdditionalResourceDiscountPercent float64 `mapstructure:"ADDITIONAL_RESOURCE_DISCOUNT_PERCENT"`
	PaymentServiceURL                 string  `mapstructure:"PAYMENT_SERVICE_URL"`
	PaymentCurrency                   string  `mapstructure:"PAYMENT_CURRENCY"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8086")
	viper.SetDefault("COUPON_CACHE_PREFIX", "kioskads:coupon")
	viper.SetDefault("COUPON_CACHE_TTL_SECONDS", 30)
	viper.SetDefault("NOTIFICATION_EXCHANGE", "kioskads.notifications")
	viper.SetDefault("BOOKING_TIMEZONE", "UTC")
	viper.SetDefault("LIFECYCLE_JOB_SCHEDULE", "*/5 * * * *") // Every five minutes.
	viper.SetDefault("ADDITIONAL_RESOURCE_DISCOUNT_PERCENT", 0.0)
	viper.SetDefault("PAYMENT_CURRENCY", "USD")
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("COUPON_CACHE_PREFIX")
	_ = viper.BindEnv("COUPON_CACHE_TTL_SECONDS")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("NOTIFICATION_EXCHANGE")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("BOOKING_TIMEZONE")
	_ = viper.BindEnv("LIFECYCLE_JOB_SCHEDULE")
	_ = viper.BindEnv("ADDITIONAL_RESOURCE_DISCOUNT_PERCENT")
	_ = viper.BindEnv("PAYMENT_SERVICE_URL")
	_ = viper.BindEnv("PAYMENT_CURRENCY")

	err = viper.Unmarshal(&config)
	return
}
