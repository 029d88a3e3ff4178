package http

import (
	"github.com/marketplace-verify/internal/application/resolver"
	"github.com/marketplace-verify/internal/infrastructure/dynamo"
	"github.com/marketplace-verify/internal/infrastructure/psn"
	"github.com/marketplace-verify/internal/infrastructure/reddit"
	"github.com/marketplace-verify/internal/infrastructure/trello"
	"github.com/marketplace-verify/internal/infrastructure/webhook"
	"github.com/marketplace-verify/internal/infrastructure/xbox"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	RecordRepo  *dynamo.RecordRepo
	SessionRepo *dynamo.SessionRepo
	Reddit      *reddit.Client
	Xbox        *xbox.Client
	PSN         *psn.Client
	Trello      *trello.Client
	Notifier    webhook.Notifier
	// OperatorAlerts carries systemic alerts (expired platform
	// credentials). May be nil when no channel is configured.
	OperatorAlerts resolver.OperatorAlerter
}
