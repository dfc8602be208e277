package services

import (
	"context"

	"helpdesk/internal/domain"
	"helpdesk/internal/domain/models"
)

// Eager loading is done with one batched lookup per associated table.

func (d Deps) hydrateTickets(ctx context.Context, tickets []models.Ticket) error {
	ids := make([]domain.ID, 0, len(tickets)*2)
	for _, t := range tickets {
		ids = append(ids, t.UserID)
		if t.AssignedTo != nil {
			ids = append(ids, *t.AssignedTo)
		}
	}
	users, err := d.users().Summaries(ctx, ids)
	if err != nil {
		return err
	}
	for i := range tickets {
		tickets[i].User = users[tickets[i].UserID]
		if tickets[i].AssignedTo != nil {
			tickets[i].AssignedToUser = users[*tickets[i].AssignedTo]
		}
	}
	return nil
}

func (d Deps) ticketAndUserMaps(ctx context.Context, ticketIDs, userIDs []domain.ID) (map[domain.ID]*models.TicketSummary, map[domain.ID]*models.UserSummary, error) {
	tickets, err := d.tickets().Summaries(ctx, ticketIDs)
	if err != nil {
		return nil, nil, err
	}
	users, err := d.users().Summaries(ctx, userIDs)
	if err != nil {
		return nil, nil, err
	}
	return tickets, users, nil
}

func (d Deps) hydrateComments(ctx context.Context, rows []models.Comment) error {
	var ticketIDs, userIDs []domain.ID
	for _, r := range rows {
		ticketIDs = append(ticketIDs, r.TicketID)
		userIDs = append(userIDs, r.AuthorID)
	}
	tickets, users, err := d.ticketAndUserMaps(ctx, ticketIDs, userIDs)
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i].Ticket = tickets[rows[i].TicketID]
		rows[i].Author = users[rows[i].AuthorID]
	}
	return nil
}

func (d Deps) hydrateNotes(ctx context.Context, rows []models.Note) error {
	var ticketIDs, userIDs []domain.ID
	for _, r := range rows {
		ticketIDs = append(ticketIDs, r.TicketID)
		userIDs = append(userIDs, r.AgentID)
	}
	tickets, users, err := d.ticketAndUserMaps(ctx, ticketIDs, userIDs)
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i].Ticket = tickets[rows[i].TicketID]
		rows[i].Agent = users[rows[i].AgentID]
	}
	return nil
}

func (d Deps) hydrateMeetings(ctx context.Context, rows []models.Meeting) error {
	var ticketIDs, userIDs []domain.ID
	for _, r := range rows {
		ticketIDs = append(ticketIDs, r.TicketID)
		userIDs = append(userIDs, r.ClientID, r.AgentID)
	}
	tickets, users, err := d.ticketAndUserMaps(ctx, ticketIDs, userIDs)
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i].Ticket = tickets[rows[i].TicketID]
		rows[i].Client = users[rows[i].ClientID]
		rows[i].Agent = users[rows[i].AgentID]
	}
	return nil
}

func (d Deps) hydrateFeedbacks(ctx context.Context, rows []models.Feedback) error {
	var ticketIDs, userIDs []domain.ID
	for _, r := range rows {
		ticketIDs = append(ticketIDs, r.TicketID)
		userIDs = append(userIDs, r.ClientID)
	}
	tickets, users, err := d.ticketAndUserMaps(ctx, ticketIDs, userIDs)
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i].Ticket = tickets[rows[i].TicketID]
		rows[i].Client = users[rows[i].ClientID]
	}
	return nil
}
