// Package approval holds the two-role approval state machine: how a new
// transaction starts, which transitions exist, and who may see or act on what.
package approval

import (
	"strings"
	"time"

	"github.com/asauntung/bumdes/internal/apperr"
	"github.com/asauntung/bumdes/internal/models"
	"github.com/asauntung/bumdes/internal/validate"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionDelete  Action = "delete"
)

// intakeRule is how a role's new transactions enter the machine.
type intakeRule struct {
	status       models.TransactionStatus
	selfApproved bool
}

// Directors bypass the pending state; their entries are approved by themselves.
var intake = map[models.Role]intakeRule{
	models.RoleDirector:  {status: models.TxnApproved, selfApproved: true},
	models.RoleTreasurer: {status: models.TxnPending},
}

// transition lists the source states an action is legal from and who may
// perform it from each.
type transition struct {
	from map[models.TransactionStatus]grant
}

type grant struct {
	director bool
	owner    bool
}

var transitions = map[Action]transition{
	ActionApprove: {from: map[models.TransactionStatus]grant{
		models.TxnPending: {director: true},
	}},
	ActionReject: {from: map[models.TransactionStatus]grant{
		models.TxnPending: {director: true},
	}},
	ActionDelete: {from: map[models.TransactionStatus]grant{
		models.TxnPending:  {director: true, owner: true},
		models.TxnApproved: {director: true, owner: true},
	}},
}

// Intake validates in and builds the transaction a creator would store. ID
// and CreatedAt are placeholders until persistence assigns them.
func Intake(in models.NewTransaction, creator models.Principal, now time.Time) (models.Transaction, error) {
	if !creator.Valid() {
		return models.Transaction{}, apperr.Forbidden("unknown principal")
	}
	rule, ok := intake[creator.Role]
	if !ok {
		return models.Transaction{}, apperr.Forbidden("role may not create transactions")
	}
	if err := validate.Struct(in); err != nil {
		return models.Transaction{}, err
	}
	date, err := models.ParseDate(in.Date)
	if err != nil {
		return models.Transaction{}, apperr.Wrap(apperr.CodeValidation, err, "validation failed").
			WithDetails(validate.Errs{{Field: "date", Msg: "must be a date formatted " + models.DateLayout}})
	}

	tx := models.Transaction{
		Date:        date,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    in.Category,
		Status:      rule.status,
		CreatedBy:   creator.Username,
		CreatedAt:   now.UTC(),
	}
	if rule.selfApproved {
		by := creator.Username
		at := tx.CreatedAt
		tx.ApprovedBy = &by
		tx.ApprovedAt = &at
	}
	return tx, nil
}

// Check reports whether actor may apply action to tx. A nil tx means the id
// is not in the set.
func Check(action Action, actor models.Principal, tx *models.Transaction) error {
	tr, ok := transitions[action]
	if !ok {
		return apperr.Newf(apperr.CodeInternal, "unknown action %q", action)
	}
	if !actor.Valid() {
		return apperr.Forbidden("unknown principal")
	}
	// Role-only actions are refused before the record is consulted.
	if !anyOwnerGrant(tr) && !actor.IsDirector() {
		return apperr.Newf(apperr.CodePermissionDenied, "only a director may %s", action)
	}
	if tx == nil {
		return apperr.InvalidState("transaction does not exist")
	}
	g, ok := tr.from[tx.Status]
	if !ok {
		return apperr.Newf(apperr.CodeInvalidState, "cannot %s a %s transaction", action, tx.Status).
			WithDetails(map[string]any{"id": tx.ID, "status": tx.Status})
	}
	if g.director && actor.IsDirector() {
		return nil
	}
	if g.owner && tx.CreatedBy == actor.Username {
		return nil
	}
	return apperr.Newf(apperr.CodePermissionDenied, "not allowed to %s transaction %d", action, tx.ID)
}

func anyOwnerGrant(tr transition) bool {
	for _, g := range tr.from {
		if g.owner {
			return true
		}
	}
	return false
}

// Visible is the read-side rule: directors see everything, treasurers see
// their own records plus every approved one.
func Visible(viewer models.Principal, tx models.Transaction) bool {
	if viewer.IsDirector() {
		return true
	}
	return tx.IsApproved() || tx.CreatedBy == viewer.Username
}

// VisibleTo binds Visible to a viewer for use as a list predicate.
func VisibleTo(viewer models.Principal) func(models.Transaction) bool {
	return func(tx models.Transaction) bool { return Visible(viewer, tx) }
}

// PendingFor is the approval queue as seen by viewer.
func PendingFor(viewer models.Principal) func(models.Transaction) bool {
	return func(tx models.Transaction) bool {
		return tx.Status == models.TxnPending && Visible(viewer, tx)
	}
}

// Approve returns tx moved to approved by actor. Callers run Check first.
func Approve(tx models.Transaction, actor models.Principal, now time.Time) models.Transaction {
	by := actor.Username
	at := now.UTC()
	tx.Status = models.TxnApproved
	tx.ApprovedBy = &by
	tx.ApprovedAt = &at
	return tx
}

// Consistent reports whether tx satisfies the record invariants.
func Consistent(tx models.Transaction) bool {
	if tx.Amount <= 0 || !tx.Status.IsValid() || !tx.Type.IsValid() {
		return false
	}
	return (tx.ApprovedBy != nil) == tx.IsApproved()
}
