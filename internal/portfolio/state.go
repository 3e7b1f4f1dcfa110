package portfolio

import (
	"artfolio/internal/common"
	"artfolio/internal/dbmysql"
)

// Transition authorization. Each legal edge of the status graph names who may
// take it; the predicate is evaluated exactly once at the entry of each
// transition method, nowhere else.
//
//	draft -> pending_review            owner
//	pending_review -> published        admin
//	pending_review -> rejected         admin
//	rejected -> pending_review         owner
//	published -> archived              owner or admin
//
// archived is terminal.

type transitionRule struct {
	ownerMay bool
	adminMay bool
}

var transitions = map[string]map[string]transitionRule{
	dbmysql.StatusDraft: {
		dbmysql.StatusPendingReview: {ownerMay: true},
	},
	dbmysql.StatusPendingReview: {
		dbmysql.StatusPublished: {adminMay: true},
		dbmysql.StatusRejected:  {adminMay: true},
	},
	dbmysql.StatusRejected: {
		dbmysql.StatusPendingReview: {ownerMay: true},
	},
	dbmysql.StatusPublished: {
		dbmysql.StatusArchived: {ownerMay: true, adminMay: true},
	},
}

// authorizeTransition checks both that the edge exists from the portfolio's
// current status and that actor is allowed to take it.
func authorizeTransition(actor common.Actor, pf *dbmysql.Portfolio, to string) error {
	rule, ok := transitions[pf.Status][to]
	if !ok {
		return common.NewConflict("cannot move portfolio from %s to %s", pf.Status, to)
	}

	if rule.adminMay && actor.Admin {
		return nil
	}
	if rule.ownerMay && actor.UserID == pf.AuthorID {
		return nil
	}
	return common.NewForbidden("actor %d may not move portfolio %d to %s", actor.UserID, pf.PortfolioID, to)
}

// editableStatus reports whether block content may change in this status.
func editableStatus(status string) bool {
	return status == dbmysql.StatusDraft || status == dbmysql.StatusRejected
}
