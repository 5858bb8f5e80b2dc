package audit

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// AuditEventSuite covers how guard and invalidation events are routed to
// consumers.
//
// Justification: security tooling subscribes only to CategorySecurity. A block
// or rejection event routed to operations would be invisible to it.
type AuditEventSuite struct {
	suite.Suite
}

func TestAuditEventSuite(t *testing.T) {
	suite.Run(t, new(AuditEventSuite))
}

func (s *AuditEventSuite) TestCategory() {
	cases := map[AuditEvent]Category{
		EventDeletionRejected:    CategorySecurity,
		EventAbuseDetected:       CategorySecurity,
		EventUserBlocked:         CategorySecurity,
		EventUserUnblocked:       CategorySecurity,
		EventQuotaRaceRejected:   CategorySecurity,
		EventInvalidationFailed:  CategoryOperations,
		EventInvalidationPartial: CategoryOperations,
		EventRulesUpdated:        CategoryOperations,
		EventQuotaUpdated:        CategoryOperations,
		EventGuardDegraded:       CategoryOperations,
	}
	for event, want := range cases {
		s.Run(string(event), func() {
			s.Equal(want, event.Category())
		})
	}
}

func (s *AuditEventSuite) TestCategory_UnknownFallsBackToOperations() {
	s.Equal(CategoryOperations, AuditEvent("cdn_purge_requested").Category())
	s.Equal(CategoryOperations, AuditEvent("").Category())
}
