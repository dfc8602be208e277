package services

import (
	"context"
	"fmt"
	"strings"

	"helpdesk/internal/domain"
	"helpdesk/internal/domain/models"
	"helpdesk/internal/query"
	"helpdesk/internal/repositories"
	"helpdesk/internal/utils"
)

const defaultMaxOpenTickets = 5

type TicketService struct {
	Deps
	RequestID string
}

type CreateTicketInput struct {
	Title       string
	Description string
	Priority    string
	Category    string
}

// AdminTicketInput carries optional admin edits; nil fields are left alone.
type AdminTicketInput struct {
	Priority   *string
	Status     *string
	AssignedTo *domain.ID
}

// ClientTicketInput carries optional owner edits.
type ClientTicketInput struct {
	Title       *string
	Description *string
	Category    *string
}

// AgentStanding is the answer of the best/worst agent statistics.
type AgentStanding struct {
	Agents      []models.UserSummary `json:"agents"`
	TotalSolved int                  `json:"total_solved"`
}

func ticketNotFound() error {
	return domain.NotFoundError{Resource: "ticket", Module: domain.ModuleTicket}
}

func (s TicketService) notifier() Notifier {
	return Notifier{Deps: s.Deps, RequestID: s.RequestID}
}

func (s TicketService) List(ctx context.Context, desc query.Descriptor) (domain.Page[models.Ticket], error) {
	page, err := listPage(ctx, s.tickets().Repository, desc)
	if err != nil {
		return page, err
	}
	return page, s.hydrateTickets(ctx, page.Data)
}

// AssignedToMe lists tickets owned by the calling agent.
func (s TicketService) AssignedToMe(ctx context.Context, p domain.Principal, desc query.Descriptor) (domain.Page[models.Ticket], error) {
	return s.List(ctx, desc.Scope(query.Equal("assigned_to", p.ID)))
}

// ListByUser lists tickets opened by the caller.
func (s TicketService) ListByUser(ctx context.Context, p domain.Principal, desc query.Descriptor) (domain.Page[models.Ticket], error) {
	return s.List(ctx, desc.Scope(query.Equal("user_id", p.ID)))
}

func (s TicketService) find(ctx context.Context, id domain.ID) (models.Ticket, error) {
	t, err := s.tickets().FindByKey(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if t == nil {
		return models.Ticket{}, ticketNotFound()
	}
	return *t, nil
}

func (s TicketService) load(ctx context.Context, id domain.ID) (models.Ticket, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	rows := []models.Ticket{t}
	if err := s.hydrateTickets(ctx, rows); err != nil {
		return models.Ticket{}, err
	}
	return rows[0], nil
}

// Get returns one ticket. Clients only see their own.
func (s TicketService) Get(ctx context.Context, p domain.Principal, id domain.ID) (models.Ticket, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if p.Role == domain.RoleClient && t.UserID != p.ID {
		return models.Ticket{}, domain.ForbiddenError{Msg: "ticket belongs to another user", Module: domain.ModuleTicket}
	}
	return t, nil
}

func (s TicketService) MySolved(ctx context.Context, p domain.Principal) (int, error) {
	return s.tickets().CountWhere(ctx, query.AllOf(
		query.Equal("assigned_to", p.ID),
		query.Equal("status", string(domain.TicketResolved)),
	))
}

func (s TicketService) TotalSolved(ctx context.Context) (int, error) {
	return s.tickets().CountWhere(ctx, query.Equal("status", string(domain.TicketResolved)))
}

func (s TicketService) TotalByUser(ctx context.Context, userID domain.ID) (int, error) {
	return s.tickets().CountWhere(ctx, query.Equal("user_id", userID))
}

func (s TicketService) Total(ctx context.Context) (int, error) {
	return s.tickets().CountWhere(ctx, nil)
}

// BestAgents returns every agent tied for the most resolved tickets.
func (s TicketService) BestAgents(ctx context.Context) (AgentStanding, error) {
	return s.standing(ctx, query.Desc)
}

// WorstAgents returns every agent tied for the fewest resolved tickets.
func (s TicketService) WorstAgents(ctx context.Context) (AgentStanding, error) {
	return s.standing(ctx, query.Asc)
}

func (s TicketService) standing(ctx context.Context, dir query.Direction) (AgentStanding, error) {
	counts, err := s.tickets().SolvedCounts(ctx, dir)
	if err != nil {
		return AgentStanding{}, err
	}
	if len(counts) == 0 {
		return AgentStanding{Agents: []models.UserSummary{}}, nil
	}

	top := counts[0].Solved
	ids := []domain.ID{}
	for _, c := range counts {
		if c.Solved != top {
			break
		}
		ids = append(ids, c.AgentID)
	}
	users, err := s.users().Summaries(ctx, ids)
	if err != nil {
		return AgentStanding{}, err
	}
	out := AgentStanding{Agents: []models.UserSummary{}, TotalSolved: top}
	for _, id := range ids {
		if u := users[id]; u != nil {
			out.Agents = append(out.Agents, *u)
		}
	}
	return out, nil
}

// Create opens a PENDING ticket for a client, within the open-ticket limit.
func (s TicketService) Create(ctx context.Context, p domain.Principal, in CreateTicketInput) (models.Ticket, error) {
	priority, ok := domain.ParsePriority(in.Priority)
	if !ok {
		return models.Ticket{}, domain.ValidationError{Field: "priority", Msg: "must be LOW, MEDIUM, HIGH or URGENT"}
	}
	category, ok := domain.ParseCategory(in.Category)
	if !ok {
		return models.Ticket{}, domain.ValidationError{Field: "category", Msg: "must be BUG, FEATURE_REQUEST, SUPPORT or BILLING"}
	}
	title := utils.NormalizeSpace(in.Title)
	if title == "" {
		return models.Ticket{}, domain.ValidationError{Field: "title", Msg: "is required"}
	}

	limit := s.MaxOpenTickets
	if limit <= 0 {
		limit = defaultMaxOpenTickets
	}
	open, err := s.tickets().CountOpenByUser(ctx, p.ID)
	if err != nil {
		return models.Ticket{}, err
	}
	if open >= limit {
		return models.Ticket{}, domain.BusinessError{
			Code:   "TICKET_LIMIT_REACHED",
			Msg:    fmt.Sprintf("you cannot have more than %d open tickets", limit),
			Module: domain.ModuleTicket,
		}
	}

	var id domain.ID
	err = s.inTx(ctx, func(q repositories.Queryer) error {
		var err error
		id, err = repositories.NewTicketRepository(q).Create(ctx, map[string]any{
			"title":       title,
			"description": strings.TrimSpace(in.Description),
			"priority":    string(priority),
			"category":    string(category),
			"status":      string(domain.TicketPending),
			"user_id":     p.ID,
		})
		if err != nil {
			return err
		}
		return repositories.NewHistoryRepository(q).Log(ctx, id, p.ID, fmt.Sprintf("Ticket created by user %d", p.ID))
	})
	if err != nil {
		return models.Ticket{}, err
	}
	utils.LogEvent(s.RequestID, "ticket", "create", fmt.Sprintf("ticket_id=%d user_id=%d", id, p.ID))
	return s.load(ctx, id)
}

// transition applies attrs while guard holds and writes one history line in
// the same transaction. A failed guard surfaces as conflict.
func (s TicketService) transition(ctx context.Context, id, actor domain.ID, attrs map[string]any, guard query.Predicate, history string) error {
	return s.inTx(ctx, func(q repositories.Queryer) error {
		changed, err := repositories.NewTicketRepository(q).UpdateIf(ctx, id, attrs, guard)
		if err != nil {
			return err
		}
		if !changed {
			return domain.ConflictError{Resource: "ticket", Msg: "ticket was modified concurrently", Module: domain.ModuleTicket}
		}
		return repositories.NewHistoryRepository(q).Log(ctx, id, actor, history)
	})
}

// Assign hands an open ticket to an agent and moves it to IN_PROGRESS.
func (s TicketService) Assign(ctx context.Context, p domain.Principal, id, agentID domain.ID) (models.Ticket, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	agent, err := s.users().FindByKey(ctx, agentID)
	if err != nil {
		return models.Ticket{}, err
	}
	if agent == nil {
		return models.Ticket{}, domain.NotFoundError{Resource: "agent", Module: domain.ModuleTicket}
	}
	if agent.Role != domain.RoleAgent {
		return models.Ticket{}, domain.BusinessError{Code: "NOT_AN_AGENT", Msg: "user is not an agent", Status: 400, Module: domain.ModuleTicket}
	}
	if t.Status != domain.TicketPending && t.Status != domain.TicketInProgress {
		return models.Ticket{}, domain.BusinessError{Code: "INVALID_TICKET_STATUS", Msg: "only open tickets can be assigned", Status: 400, Module: domain.ModuleTicket}
	}

	err = s.transition(ctx, id, p.ID,
		map[string]any{"assigned_to": agentID, "status": string(domain.TicketInProgress)},
		query.Equal("status", string(t.Status)),
		fmt.Sprintf("Ticket assigned to agent %d by user %d", agentID, p.ID))
	if err != nil {
		return models.Ticket{}, err
	}
	utils.LogEvent(s.RequestID, "ticket", "assign", fmt.Sprintf("ticket_id=%d agent_id=%d", id, agentID))
	s.notifier().Notify(ctx, t.UserID, "Your ticket was assigned",
		fmt.Sprintf("Your ticket %q has been assigned to %s.", t.Title, agent.FullName()))
	s.notifier().Notify(ctx, agentID, "New ticket assigned", fmt.Sprintf("Ticket %q has been assigned to you.", t.Title))
	return s.load(ctx, id)
}

// AssignToSelf lets staff pick up a PENDING, unassigned ticket.
func (s TicketService) AssignToSelf(ctx context.Context, p domain.Principal, id domain.ID) (models.Ticket, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if t.IsAssigned() {
		return models.Ticket{}, domain.ForbiddenError{Msg: "ticket is already assigned", Module: domain.ModuleTicket}
	}
	if t.Status != domain.TicketPending {
		return models.Ticket{}, domain.ForbiddenError{Msg: "only pending tickets can be assigned", Module: domain.ModuleTicket}
	}

	err = s.transition(ctx, id, p.ID,
		map[string]any{"assigned_to": p.ID, "status": string(domain.TicketInProgress)},
		query.AllOf(query.IsNull("assigned_to"), query.Equal("status", string(domain.TicketPending))),
		fmt.Sprintf("Ticket self-assigned by user %d", p.ID))
	if err != nil {
		if domain.IsConflict(err) {
			return models.Ticket{}, domain.ForbiddenError{Msg: "ticket is already assigned", Module: domain.ModuleTicket}
		}
		return models.Ticket{}, err
	}
	utils.LogEvent(s.RequestID, "ticket", "assign_self", fmt.Sprintf("ticket_id=%d agent_id=%d", id, p.ID))
	s.notifier().Notify(ctx, t.UserID, "Your ticket was assigned",
		fmt.Sprintf("Your ticket %q is now being handled by an agent.", t.Title))
	return s.load(ctx, id)
}

// Resolve moves an IN_PROGRESS ticket to RESOLVED. Agents may only resolve
// tickets assigned to them.
func (s TicketService) Resolve(ctx context.Context, p domain.Principal, id domain.ID) (models.Ticket, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if t.Status != domain.TicketInProgress {
		return models.Ticket{}, domain.BusinessError{
			Code:   "INVALID_TICKET_STATUS",
			Msg:    "only tickets with status IN_PROGRESS can be resolved",
			Status: 400,
			Module: domain.ModuleTicket,
		}
	}
	if p.Role == domain.RoleAgent && (t.AssignedTo == nil || *t.AssignedTo != p.ID) {
		return models.Ticket{}, domain.ForbiddenError{Msg: "ticket is assigned to another agent", Module: domain.ModuleTicket}
	}

	err = s.transition(ctx, id, p.ID,
		map[string]any{"status": string(domain.TicketResolved)},
		query.Equal("status", string(domain.TicketInProgress)),
		fmt.Sprintf("Ticket resolved by user %d", p.ID))
	if err != nil {
		return models.Ticket{}, err
	}
	utils.LogEvent(s.RequestID, "ticket", "resolve", fmt.Sprintf("ticket_id=%d user_id=%d", id, p.ID))
	s.notifier().Notify(ctx, t.UserID, "Your ticket was resolved",
		fmt.Sprintf("Your ticket %q has been resolved.", t.Title))
	return s.load(ctx, id)
}

// Close finishes a RESOLVED ticket. Clients may only close their own.
func (s TicketService) Close(ctx context.Context, p domain.Principal, id domain.ID) (models.Ticket, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if p.Role == domain.RoleClient && t.UserID != p.ID {
		return models.Ticket{}, domain.ForbiddenError{Msg: "ticket belongs to another user", Module: domain.ModuleTicket}
	}
	if t.Status != domain.TicketResolved {
		return models.Ticket{}, domain.BusinessError{
			Code:   "INVALID_TICKET_STATUS",
			Msg:    "only tickets with status RESOLVED can be closed",
			Status: 400,
			Module: domain.ModuleTicket,
		}
	}
	err = s.transition(ctx, id, p.ID,
		map[string]any{"status": string(domain.TicketClosed)},
		query.Equal("status", string(domain.TicketResolved)),
		fmt.Sprintf("Ticket closed by user %d", p.ID))
	if err != nil {
		return models.Ticket{}, err
	}
	utils.LogEvent(s.RequestID, "ticket", "close", fmt.Sprintf("ticket_id=%d user_id=%d", id, p.ID))
	return s.load(ctx, id)
}

// UpdateByAdmin edits priority, status and assignee. Status changes must
// follow the lifecycle.
func (s TicketService) UpdateByAdmin(ctx context.Context, p domain.Principal, id domain.ID, in AdminTicketInput) (models.Ticket, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}

	attrs := map[string]any{}
	changes := []string{}
	if in.Priority != nil {
		priority, ok := domain.ParsePriority(*in.Priority)
		if !ok {
			return models.Ticket{}, domain.ValidationError{Field: "priority", Msg: "must be LOW, MEDIUM, HIGH or URGENT"}
		}
		attrs["priority"] = string(priority)
		changes = append(changes, "priority="+string(priority))
	}
	if in.AssignedTo != nil {
		agent, err := s.users().FindByKey(ctx, *in.AssignedTo)
		if err != nil {
			return models.Ticket{}, err
		}
		if agent == nil || agent.Role != domain.RoleAgent {
			return models.Ticket{}, domain.BusinessError{Code: "NOT_AN_AGENT", Msg: "user is not an agent", Status: 400, Module: domain.ModuleTicket}
		}
		attrs["assigned_to"] = *in.AssignedTo
		changes = append(changes, fmt.Sprintf("assigned_to=%d", *in.AssignedTo))
		if t.Status == domain.TicketPending && in.Status == nil {
			attrs["status"] = string(domain.TicketInProgress)
		}
	}
	if in.Status != nil {
		status, ok := domain.ParseTicketStatus(*in.Status)
		if !ok {
			return models.Ticket{}, domain.ValidationError{Field: "status", Msg: "unknown ticket status"}
		}
		if !domain.CanTransition(t.Status, status) {
			return models.Ticket{}, domain.BusinessError{
				Code:   "INVALID_TICKET_STATUS",
				Msg:    fmt.Sprintf("cannot move ticket from %s to %s", t.Status, status),
				Status: 400,
				Module: domain.ModuleTicket,
			}
		}
		attrs["status"] = string(status)
		changes = append(changes, "status="+string(status))
	}
	if len(attrs) == 0 {
		return s.load(ctx, id)
	}

	err = s.transition(ctx, id, p.ID, attrs, query.Equal("status", string(t.Status)),
		fmt.Sprintf("Ticket updated by user %d: %s", p.ID, strings.Join(changes, ", ")))
	if err != nil {
		return models.Ticket{}, err
	}
	utils.LogEvent(s.RequestID, "ticket", "admin_update", fmt.Sprintf("ticket_id=%d %s", id, strings.Join(changes, " ")))
	return s.load(ctx, id)
}

// UpdateByClient lets the owner edit the text of a ticket that is not closed.
func (s TicketService) UpdateByClient(ctx context.Context, p domain.Principal, id domain.ID, in ClientTicketInput) (models.Ticket, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if t.UserID != p.ID {
		return models.Ticket{}, domain.ForbiddenError{Msg: "ticket belongs to another user", Module: domain.ModuleTicket}
	}
	if t.Status == domain.TicketClosed {
		return models.Ticket{}, domain.ForbiddenError{Msg: "closed tickets cannot be edited", Module: domain.ModuleTicket}
	}

	attrs := map[string]any{}
	if in.Title != nil {
		title := utils.NormalizeSpace(*in.Title)
		if title == "" {
			return models.Ticket{}, domain.ValidationError{Field: "title", Msg: "cannot be empty"}
		}
		attrs["title"] = title
	}
	if in.Description != nil {
		attrs["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		category, ok := domain.ParseCategory(*in.Category)
		if !ok {
			return models.Ticket{}, domain.ValidationError{Field: "category", Msg: "must be BUG, FEATURE_REQUEST, SUPPORT or BILLING"}
		}
		attrs["category"] = string(category)
	}
	if len(attrs) == 0 {
		return s.load(ctx, id)
	}

	err = s.transition(ctx, id, p.ID, attrs, query.NotEqual("status", string(domain.TicketClosed)),
		fmt.Sprintf("Ticket edited by user %d", p.ID))
	if err != nil {
		return models.Ticket{}, err
	}
	utils.LogEvent(s.RequestID, "ticket", "client_update", fmt.Sprintf("ticket_id=%d", id))
	return s.load(ctx, id)
}

func (s TicketService) Delete(ctx context.Context, p domain.Principal, id domain.ID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	err := s.inTx(ctx, func(q repositories.Queryer) error {
		if err := repositories.NewTicketRepository(q).Destroy(ctx, id); err != nil {
			return err
		}
		return repositories.NewHistoryRepository(q).Log(ctx, id, p.ID, fmt.Sprintf("Ticket deleted by user %d", p.ID))
	})
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "ticket", "delete", fmt.Sprintf("ticket_id=%d", id))
	return nil
}
