package events

// Exchange names. Every message type is published to its own fanout exchange
// so downstream services subscribe independently.
const (
	ExchangeProjectCreated       = "project.created"
	ExchangeProjectUpdated       = "project.updated"
	ExchangeProjectDeleted       = "project.deleted"
	ExchangeProjectSync          = "project.sync"
	ExchangeProjectMemberAdded   = "project.member.added"
	ExchangeProjectMemberRemoved = "project.member.removed"
	ExchangeFileStore            = "file.store"
	ExchangeFileDelete           = "file.delete"
	ExchangeNotification         = "notification.dispatch"

	ExchangeFileStored         = "file.stored"
	ExchangeFileStoreFailed    = "file.store.failed"
	ExchangeUserDeleted        = "user.deleted"
	ExchangeProjectSyncRequest = "project.sync.request"
)

// FileTypeProjectLogo is the logical file-type tag for project images,
// shared with the file service.
const FileTypeProjectLogo = "project_logo"

// Message is an event payload bound to a fanout exchange.
type Message interface {
	Exchange() string
}

// MemberSnapshot is the roster entry carried by project events. Downstream
// services use it to sync their authorization caches.
type MemberSnapshot struct {
	UserID  string `json:"user_id"`
	IsOwner bool   `json:"is_owner"`
}

// ProjectCreatedMessage announces a new project and its initial roster.
type ProjectCreatedMessage struct {
	ProjectID string           `json:"project_id"`
	Name      string           `json:"name"`
	Slug      string           `json:"slug"`
	Members   []MemberSnapshot `json:"members"`
}

func (ProjectCreatedMessage) Exchange() string { return ExchangeProjectCreated }

// ProjectUpdatedMessage carries the current name, slug and roster after any
// change that affects them.
type ProjectUpdatedMessage struct {
	ProjectID string           `json:"project_id"`
	Name      string           `json:"name"`
	Slug      string           `json:"slug"`
	Members   []MemberSnapshot `json:"members"`
}

func (ProjectUpdatedMessage) Exchange() string { return ExchangeProjectUpdated }

// ProjectDeletedMessage announces a hard delete.
type ProjectDeletedMessage struct {
	ProjectID string `json:"project_id"`
}

func (ProjectDeletedMessage) Exchange() string { return ExchangeProjectDeleted }

// ProjectSyncMessage is an on-demand snapshot, published in response to a
// ProjectSyncRequestMessage.
type ProjectSyncMessage struct {
	ProjectID string           `json:"project_id"`
	Name      string           `json:"name"`
	Slug      string           `json:"slug"`
	Members   []MemberSnapshot `json:"members"`
}

func (ProjectSyncMessage) Exchange() string { return ExchangeProjectSync }

type ProjectMemberAddedMessage struct {
	ProjectID string `json:"project_id"`
	MemberID  string `json:"member_id"`
	UserID    string `json:"user_id"`
}

func (ProjectMemberAddedMessage) Exchange() string { return ExchangeProjectMemberAdded }

type ProjectMemberRemovedMessage struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
}

func (ProjectMemberRemovedMessage) Exchange() string { return ExchangeProjectMemberRemoved }

// FileStoreMessage asks the file service to persist a binary payload. The
// service answers with FileStoredMessage or FileStoreFailedMessage correlated
// by ParentID.
type FileStoreMessage struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
	FileType    string `json:"file_type"`
	ParentID    string `json:"parent_id"`
	UserID      string `json:"user_id"`
}

func (FileStoreMessage) Exchange() string { return ExchangeFileStore }

// FileDeleteMessage asks the file service to remove a previously stored file.
type FileDeleteMessage struct {
	FilePath string `json:"file_path"`
	FileType string `json:"file_type"`
	ParentID string `json:"parent_id"`
	UserID   string `json:"user_id"`
}

func (FileDeleteMessage) Exchange() string { return ExchangeFileDelete }

// NotificationMessage asks the notification service to notify a user.
type NotificationMessage struct {
	UserID string            `json:"user_id"`
	Type   string            `json:"type"`
	Data   map[string]string `json:"data,omitempty"`
}

func (NotificationMessage) Exchange() string { return ExchangeNotification }

// Inbound messages, consumed from other services.

type FileStoredMessage struct {
	FilePath string `json:"file_path"`
	FileType string `json:"file_type"`
	ParentID string `json:"parent_id"`
	UserID   string `json:"user_id"`
}

func (FileStoredMessage) Exchange() string { return ExchangeFileStored }

type FileStoreFailedMessage struct {
	Reason   string `json:"reason"`
	FileType string `json:"file_type"`
	ParentID string `json:"parent_id"`
	UserID   string `json:"user_id"`
}

func (FileStoreFailedMessage) Exchange() string { return ExchangeFileStoreFailed }

type UserDeletedMessage struct {
	UserID string `json:"user_id"`
}

func (UserDeletedMessage) Exchange() string { return ExchangeUserDeleted }

// ProjectSyncRequestMessage requests a ProjectSyncMessage for a project
// addressed by id or, failing that, by slug.
type ProjectSyncRequestMessage struct {
	ProjectID string `json:"project_id,omitempty"`
	Slug      string `json:"slug,omitempty"`
}

func (ProjectSyncRequestMessage) Exchange() string { return ExchangeProjectSyncRequest }
