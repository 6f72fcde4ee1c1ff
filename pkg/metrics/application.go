package metrics

import (
	"os"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
)

const licenseKeyEnvName = "NEW_RELIC_LICENSE_KEY"

// NewApplication returns a New Relic application configured from the standard
// NEW_RELIC_* environment variables. A nil application is returned when no
// license key is set, in which case metrics are not reported.
func NewApplication(appName string) (*newrelic.Application, error) {
	if len(os.Getenv(licenseKeyEnvName)) == 0 {
		return nil, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(appName),
		newrelic.ConfigFromEnvironment(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating new relic application")
	}
	return app, nil
}
