package config

import "github.com/spf13/viper"

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	HTTP struct {
		Addr    string
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Snapshot struct {
		Path string
	} `mapstructure:"snapshot"`

	Storage struct {
		Dir string
	} `mapstructure:"storage"`

	Telegram struct {
		Enabled      bool
		Token        string
		BarberChatID int64 `mapstructure:"barber_chat_id"`
	} `mapstructure:"telegram"`

	Wizard struct {
		// Минимум выбранных деталей стрижки, чтобы пустить дальше.
		// 0 — дефолт (2).
		MinHaircutSelections int `mapstructure:"min_haircut_selections"`
	} `mapstructure:"wizard"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`
}

func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
