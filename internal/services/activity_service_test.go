package services

import (
	"context"
	"testing"
	"time"

	"helpdesk/internal/domain"
	"helpdesk/internal/query"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeetingCreateRejectsClosedTicket(t *testing.T) {
	deps, mock := newTestDeps(t)
	expectTicket(mock, ticketRow(4, domain.TicketClosed, 3, int64(7)))

	_, err := MeetingService{Deps: deps}.Create(context.Background(), domain.Principal{ID: 7, Role: domain.RoleAgent}, 4, MeetingInput{})
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err))
	assert.Equal(t, "cannot create meeting for closed ticket", err.Error())
}

func TestMeetingRequestNeedsAssignedAgent(t *testing.T) {
	deps, mock := newTestDeps(t)
	expectTicket(mock, ticketRow(4, domain.TicketPending, 3, nil))

	_, err := MeetingService{Deps: deps}.Request(context.Background(), domain.Principal{ID: 3, Role: domain.RoleClient}, 4, MeetingInput{})
	assert.True(t, domain.IsBusiness(err), "got %v", err)
}

func TestMeetingAttrsBlankLinkIsNull(t *testing.T) {
	blank, status := "   ", "accepted"
	attrs, err := meetingAttrs(MeetingInput{MeetingLink: &blank, Status: &status})
	require.NoError(t, err)
	v, ok := attrs["meeting_link"]
	require.True(t, ok, "link must be written so it can be cleared")
	assert.Nil(t, v)
	assert.Equal(t, "ACCEPTED", attrs["status"])
}

func TestCommentOnForeignTicketForbidden(t *testing.T) {
	deps, mock := newTestDeps(t)
	expectTicket(mock, ticketRow(4, domain.TicketPending, 3, nil))

	_, err := CommentService{Deps: deps}.Create(context.Background(), domain.Principal{ID: 5, Role: domain.RoleClient}, 4, "hello")
	assert.True(t, domain.IsForbidden(err), "got %v", err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentGetOnForeignTicketForbidden(t *testing.T) {
	deps, mock := newTestDeps(t)
	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM `comments` WHERE `comments`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "ticket_id", "author_id", "content", "created_at", "updated_at"}).
			AddRow(2, 4, 3, "still broken", now, now))
	expectTicket(mock, ticketRow(4, domain.TicketPending, 3, nil))

	_, err := CommentService{Deps: deps}.Get(context.Background(), domain.Principal{ID: 5, Role: domain.RoleClient}, 2)
	assert.True(t, domain.IsForbidden(err), "got %v", err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentGetMissing(t *testing.T) {
	deps, mock := newTestDeps(t)
	mock.ExpectQuery("SELECT (.+) FROM `comments`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "ticket_id", "author_id", "content", "created_at", "updated_at"}))

	_, err := CommentService{Deps: deps}.Get(context.Background(), domain.Principal{ID: 5, Role: domain.RoleClient}, 2)
	assert.True(t, domain.IsNotFound(err), "got %v", err)
}

func TestCommentRequiresContent(t *testing.T) {
	deps, _ := newTestDeps(t)
	_, err := CommentService{Deps: deps}.Create(context.Background(), domain.Principal{ID: 5, Role: domain.RoleClient}, 4, "   ")
	assert.True(t, domain.IsValidation(err), "got %v", err)
}

func TestFeedbackRatingBounds(t *testing.T) {
	deps, _ := newTestDeps(t)
	six := 6
	_, err := FeedbackService{Deps: deps}.Create(context.Background(), domain.Principal{ID: 3, Role: domain.RoleClient}, 4, FeedbackInput{Rating: &six})
	assert.True(t, domain.IsValidation(err), "got %v", err)
}

func TestFeedbackNeedsResolvedTicket(t *testing.T) {
	deps, mock := newTestDeps(t)
	expectTicket(mock, ticketRow(4, domain.TicketInProgress, 3, int64(7)))
	four := 4
	_, err := FeedbackService{Deps: deps}.Create(context.Background(), domain.Principal{ID: 3, Role: domain.RoleClient}, 4, FeedbackInput{Rating: &four})
	assert.True(t, domain.IsBusiness(err), "got %v", err)
}

func TestFeedbackByAgentWithoutRatings(t *testing.T) {
	deps, mock := newTestDeps(t)
	mock.ExpectQuery("AVG\\(`feedbacks`.`rating`\\) AS average_rating").
		WillReturnRows(sqlmock.NewRows([]string{"agent_id", "total_feedbacks", "average_rating"}))

	got, err := FeedbackService{Deps: deps}.ByAgent(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.AgentID)
	assert.Zero(t, got.TotalFeedback)
}

func TestNotificationMarkReadOwnerOnly(t *testing.T) {
	deps, mock := newTestDeps(t)
	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM `notifications`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "message", "is_read", "created_at", "updated_at"}).
			AddRow(2, 3, "hi", false, now, now))

	_, err := NotificationService{Deps: deps}.MarkRead(context.Background(), domain.Principal{ID: 4, Role: domain.RoleAdmin}, 2)
	assert.True(t, domain.IsForbidden(err), "got %v", err)
}

func TestNotificationsOfOtherUserForbidden(t *testing.T) {
	deps, _ := newTestDeps(t)
	_, err := NotificationService{Deps: deps}.ByUser(context.Background(), domain.Principal{ID: 4, Role: domain.RoleAgent}, 3, query.Descriptor{Limit: 5})
	assert.True(t, domain.IsForbidden(err), "got %v", err)
}
