package repositories

var userColumns = []string{"id", "first_name", "last_name", "email", "role", "status", "created_at", "updated_at"}

var ticketColumns = []string{"id", "title", "description", "priority", "status", "category", "user_id", "assigned_to", "created_at", "updated_at"}

func userAssoc(localKey string) Association {
	return Association{Table: "users", LocalKey: localKey, ForeignKey: "id", Columns: userColumns}
}

func ticketAssoc() Association {
	return Association{Table: "tickets", LocalKey: "ticket_id", ForeignKey: "id", Columns: ticketColumns}
}

// UsersTable never selects or filters on password; see UserRepository.FindCredentials.
var UsersTable = Table{
	Name:       "users",
	Columns:    userColumns,
	WriteOnly:  []string{"password"},
	SoftDelete: true,
}

var TicketsTable = Table{
	Name:    "tickets",
	Columns: ticketColumns,
	Associations: map[string]Association{
		"user":       userAssoc("user_id"),
		"assignedTo": userAssoc("assigned_to"),
	},
	SoftDelete: true,
}

var CommentsTable = Table{
	Name:    "comments",
	Columns: []string{"id", "ticket_id", "author_id", "content", "created_at", "updated_at"},
	Associations: map[string]Association{
		"ticket": ticketAssoc(),
		"author": userAssoc("author_id"),
	},
	SoftDelete: true,
}

var NotesTable = Table{
	Name:    "notes",
	Columns: []string{"id", "ticket_id", "agent_id", "content", "created_at", "updated_at"},
	Associations: map[string]Association{
		"ticket": ticketAssoc(),
		"agent":  userAssoc("agent_id"),
	},
	SoftDelete: true,
}

var MeetingsTable = Table{
	Name:    "meetings",
	Columns: []string{"id", "ticket_id", "client_id", "agent_id", "scheduled_at", "status", "meeting_link", "created_at", "updated_at"},
	Associations: map[string]Association{
		"ticket": ticketAssoc(),
		"client": userAssoc("client_id"),
		"agent":  userAssoc("agent_id"),
	},
	SoftDelete: true,
}

var FeedbacksTable = Table{
	Name:    "feedbacks",
	Columns: []string{"id", "ticket_id", "client_id", "rating", "content", "created_at", "updated_at"},
	Associations: map[string]Association{
		"ticket": ticketAssoc(),
		"client": userAssoc("client_id"),
	},
	SoftDelete: true,
}

var HistoriesTable = Table{
	Name:    "histories",
	Columns: []string{"id", "ticket_id", "user_id", "description", "created_at", "updated_at"},
	Associations: map[string]Association{
		"ticket": ticketAssoc(),
		"user":   userAssoc("user_id"),
	},
	SoftDelete: true,
}

var NotificationsTable = Table{
	Name:    "notifications",
	Columns: []string{"id", "user_id", "message", "is_read", "created_at", "updated_at"},
	Associations: map[string]Association{
		"user": userAssoc("user_id"),
	},
	SoftDelete: true,
}
