// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("repository.parentdir", ".")
	viper.SetDefault("repository.githubrepo", "quick-lab/primerschemes")
	viper.SetDefault("repository.serverurl", "https://labs.primalscheme.com")

	viper.SetDefault("log.enabled", false)
	viper.SetDefault("log.path", "primal-page.log")

	viper.SetDefault("audit.enabled", true)
	viper.SetDefault("audit.path", "index-audit.db")
}
