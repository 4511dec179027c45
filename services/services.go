package services

import (
	"github.com/sirupsen/logrus"

	"github.com/blogem/corpdata-hub/repositories"
)

// Services holds all service instances
type Services struct {
	Audit       AuditLogger
	Data        DataProxy
	Subscribers *SubscriberRegistry
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories, logger logrus.FieldLogger) *Services {
	audit := NewAuditLogger(repos.Audit, logger.WithField("component", "audit"))
	return &Services{
		Audit:       audit,
		Data:        NewDataProxy(repos.Items, audit, logger.WithField("component", "proxy")),
		Subscribers: NewSubscriberRegistry(nil, logger.WithField("component", "observer")),
	}
}
