package services

import (
	"context"
	"fmt"
	"strings"

	"helpdesk/internal/domain"
	"helpdesk/internal/domain/models"
	"helpdesk/internal/query"
	"helpdesk/internal/utils"
)

type FeedbackService struct {
	Deps
	RequestID string
}

// FeedbackInput carries a rating between 1 and 5 and free text.
type FeedbackInput struct {
	Rating  *int
	Content *string
}

// ClientRating is a client's own rating summary.
type ClientRating struct {
	ClientID       domain.ID `json:"clientId"`
	TotalFeedbacks int       `json:"total_feedbacks"`
	AverageRating  float64   `json:"average_rating"`
}

func validRating(r *int) error {
	if r != nil && (*r < 1 || *r > 5) {
		return domain.ValidationError{Field: "rating", Msg: "must be between 1 and 5"}
	}
	return nil
}

func (s FeedbackService) List(ctx context.Context, desc query.Descriptor) (domain.Page[models.Feedback], error) {
	page, err := listPage(ctx, s.feedbacks().Repository, desc)
	if err != nil {
		return page, err
	}
	return page, s.hydrateFeedbacks(ctx, page.Data)
}

func (s FeedbackService) find(ctx context.Context, id domain.ID) (models.Feedback, error) {
	f, err := s.feedbacks().FindByKey(ctx, id)
	if err != nil {
		return models.Feedback{}, err
	}
	if f == nil {
		return models.Feedback{}, domain.NotFoundError{Resource: "feedback", Module: domain.ModuleFeedback}
	}
	return *f, nil
}

func (s FeedbackService) Get(ctx context.Context, id domain.ID) (models.Feedback, error) {
	f, err := s.find(ctx, id)
	if err != nil {
		return models.Feedback{}, err
	}
	rows := []models.Feedback{f}
	if err := s.hydrateFeedbacks(ctx, rows); err != nil {
		return models.Feedback{}, err
	}
	return rows[0], nil
}

// Create records the owner's feedback on a resolved or closed ticket. A
// ticket takes at most one feedback.
func (s FeedbackService) Create(ctx context.Context, p domain.Principal, ticketID domain.ID, in FeedbackInput) (models.Feedback, error) {
	if in.Rating == nil {
		return models.Feedback{}, domain.ValidationError{Field: "rating", Msg: "is required"}
	}
	if err := validRating(in.Rating); err != nil {
		return models.Feedback{}, err
	}
	t, err := s.visibleTicket(ctx, p, ticketID, domain.ModuleFeedback)
	if err != nil {
		return models.Feedback{}, err
	}
	if t.UserID != p.ID {
		return models.Feedback{}, domain.ForbiddenError{Msg: "only the ticket owner can leave feedback", Module: domain.ModuleFeedback}
	}
	if t.Status != domain.TicketResolved && t.Status != domain.TicketClosed {
		return models.Feedback{}, domain.BusinessError{
			Code:   "INVALID_TICKET_STATUS",
			Msg:    "feedback can only be left on resolved or closed tickets",
			Module: domain.ModuleFeedback,
		}
	}

	attrs := map[string]any{"ticket_id": ticketID, "client_id": p.ID, "rating": *in.Rating, "content": ""}
	if in.Content != nil {
		attrs["content"] = strings.TrimSpace(*in.Content)
	}
	id, err := s.feedbacks().Create(ctx, attrs)
	if err != nil {
		if domain.IsConflict(err) {
			return models.Feedback{}, domain.ConflictError{Resource: "feedback", Msg: "feedback already submitted for this ticket", Module: domain.ModuleFeedback, Err: err}
		}
		return models.Feedback{}, err
	}
	logHistory(ctx, s.histories(), s.RequestID, ticketID, p.ID, fmt.Sprintf("Feedback left by user %d", p.ID))
	utils.LogEvent(s.RequestID, "feedback", "create", fmt.Sprintf("feedback_id=%d ticket_id=%d rating=%d", id, ticketID, *in.Rating))
	return s.Get(ctx, id)
}

// Update edits feedback; clients may only touch their own.
func (s FeedbackService) Update(ctx context.Context, p domain.Principal, id domain.ID, in FeedbackInput) (models.Feedback, error) {
	f, err := s.find(ctx, id)
	if err != nil {
		return models.Feedback{}, err
	}
	if p.Role != domain.RoleAdmin && f.ClientID != p.ID {
		return models.Feedback{}, domain.ForbiddenError{Msg: "feedback belongs to another user", Module: domain.ModuleFeedback}
	}
	if err := validRating(in.Rating); err != nil {
		return models.Feedback{}, err
	}
	attrs := map[string]any{}
	if in.Rating != nil {
		attrs["rating"] = *in.Rating
	}
	if in.Content != nil {
		attrs["content"] = strings.TrimSpace(*in.Content)
	}
	if err := s.feedbacks().Update(ctx, id, attrs); err != nil {
		return models.Feedback{}, err
	}
	return s.Get(ctx, id)
}

func (s FeedbackService) Delete(ctx context.Context, id domain.ID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.feedbacks().Destroy(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "feedback", "delete", fmt.Sprintf("feedback_id=%d", id))
	return nil
}

// ByAgent averages the ratings left on tickets the agent handled. An agent
// without rated feedback gets zeros.
func (s FeedbackService) ByAgent(ctx context.Context, agentID domain.ID) (models.AgentRating, error) {
	rows, err := s.feedbacks().AgentRatings(ctx, agentID, query.Desc)
	if err != nil {
		return models.AgentRating{}, err
	}
	if len(rows) == 0 {
		return models.AgentRating{AgentID: agentID}, nil
	}
	return rows[0], nil
}

func (s FeedbackService) MyAverage(ctx context.Context, p domain.Principal) (ClientRating, error) {
	total, avg, err := s.feedbacks().ClientAverage(ctx, p.ID)
	if err != nil {
		return ClientRating{}, err
	}
	return ClientRating{ClientID: p.ID, TotalFeedbacks: total, AverageRating: avg}, nil
}

func (s FeedbackService) BestRated(ctx context.Context) (models.AgentRating, error) {
	return s.ranked(ctx, query.Desc)
}

func (s FeedbackService) WorstRated(ctx context.Context) (models.AgentRating, error) {
	return s.ranked(ctx, query.Asc)
}

func (s FeedbackService) ranked(ctx context.Context, dir query.Direction) (models.AgentRating, error) {
	rows, err := s.feedbacks().AgentRatings(ctx, 0, dir)
	if err != nil {
		return models.AgentRating{}, err
	}
	if len(rows) == 0 {
		return models.AgentRating{}, domain.NotFoundError{Resource: "rated agent", Module: domain.ModuleFeedback}
	}
	return rows[0], nil
}
