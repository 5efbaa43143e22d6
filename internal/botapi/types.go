package botapi

// Update is one inbound event from the Bot API. At most one of the payload
// fields is populated per update; the type does not enforce exclusivity.
// Updates are read-only once decoded.
type Update struct {
	UpdateID           int64               `json:"update_id"`
	Message            *Message            `json:"message,omitempty"`
	InlineQuery        *InlineQuery        `json:"inline_query,omitempty"`
	ChosenInlineResult *ChosenInlineResult `json:"chosen_inline_result,omitempty"`
	CallbackQuery      *CallbackQuery      `json:"callback_query,omitempty"`
}

// Message is an inbound or outbound chat message.
type Message struct {
	MessageID      int         `json:"message_id"`
	From           *User       `json:"from,omitempty"`
	Chat           Chat        `json:"chat"`
	Date           int         `json:"date"`
	Text           string      `json:"text,omitempty"`
	Photo          []PhotoSize `json:"photo,omitempty"`
	Audio          *Audio      `json:"audio,omitempty"`
	Voice          *Voice      `json:"voice,omitempty"`
	Document       *Document   `json:"document,omitempty"`
	Sticker        *Sticker    `json:"sticker,omitempty"`
	Video          *Video      `json:"video,omitempty"`
	Location       *Location   `json:"location,omitempty"`
	Caption        string      `json:"caption,omitempty"`
	ReplyToMessage *Message    `json:"reply_to_message,omitempty"`
}

// Chat is a private, group, or channel conversation.
type Chat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// User is a user or bot account.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// InlineQuery is an incoming inline query.
type InlineQuery struct {
	ID     string `json:"id"`
	From   User   `json:"from"`
	Query  string `json:"query"`
	Offset string `json:"offset"`
}

// ChosenInlineResult reports which inline result a user picked.
type ChosenInlineResult struct {
	ResultID string `json:"result_id"`
	From     User   `json:"from"`
	Query    string `json:"query"`
}

// CallbackQuery is an incoming callback from an inline keyboard button.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// InlineQueryResultArticle is the article flavor of an inline answer.
type InlineQueryResultArticle struct {
	Type        string `json:"type"` // always "article"
	ID          string `json:"id"`
	Title       string `json:"title"`
	MessageText string `json:"message_text"`
	Description string `json:"description,omitempty"`
}

// PhotoSize is one size of a photo or thumbnail.
type PhotoSize struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int    `json:"file_size,omitempty"`
}

// UserProfilePhotos is the result of the getUserProfilePhotos method.
type UserProfilePhotos struct {
	TotalCount int           `json:"total_count"`
	Photos     [][]PhotoSize `json:"photos"`
}

// Audio is an audio file.
type Audio struct {
	FileID    string `json:"file_id"`
	Duration  int    `json:"duration"`
	Performer string `json:"performer,omitempty"`
	Title     string `json:"title,omitempty"`
	MIMEType  string `json:"mime_type,omitempty"`
	FileSize  int    `json:"file_size,omitempty"`
}

// Voice is a voice note.
type Voice struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration"`
	MIMEType string `json:"mime_type,omitempty"`
	FileSize int    `json:"file_size,omitempty"`
}

// Document is a general file.
type Document struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
	FileSize int    `json:"file_size,omitempty"`
}

// Sticker is a sticker.
type Sticker struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Emoji    string `json:"emoji,omitempty"`
	FileSize int    `json:"file_size,omitempty"`
}

// Video is a video file.
type Video struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Duration int    `json:"duration"`
	MIMEType string `json:"mime_type,omitempty"`
	FileSize int    `json:"file_size,omitempty"`
}

// Location is a point on the map.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// File is a file ready to be downloaded. An empty FilePath means the file
// is not retrievable and no download should be attempted.
type File struct {
	FileID   string `json:"file_id"`
	FileSize int    `json:"file_size,omitempty"`
	FilePath string `json:"file_path,omitempty"`
}
