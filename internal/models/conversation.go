package models

// Conversation - переписка по подтверждённой смене, ID совпадает с ID смены
type Conversation struct {
	ID             string    `json:"id"`
	PharmacyName   string    `json:"pharmacyName"`
	PharmacistName string    `json:"pharmacistName"`
	JobRole        string    `json:"jobRole"`
	Messages       []Message `json:"messages"`
}

type Message struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Sender    UserRole `json:"sender"`
	Timestamp string   `json:"timestamp"`
}

// NewConversationForJob создаёт пустую переписку при подтверждении кандидата
func NewConversationForJob(job Job, pharmacyName string, applicant Applicant) Conversation {
	return Conversation{
		ID:             job.ID,
		PharmacyName:   pharmacyName,
		PharmacistName: applicant.Name,
		JobRole:        job.Role,
		Messages:       []Message{},
	}
}

func HasConversation(conversations []Conversation, id string) bool {
	for _, c := range conversations {
		if c.ID == id {
			return true
		}
	}
	return false
}

// WithMessage добавляет сообщение в конец нужной переписки.
// Возвращает false, если переписки с таким ID нет.
func WithMessage(conversations []Conversation, conversationID string, msg Message) ([]Conversation, bool) {
	out := make([]Conversation, len(conversations))
	found := false
	for i, c := range conversations {
		if c.ID == conversationID {
			messages := make([]Message, 0, len(c.Messages)+1)
			messages = append(messages, c.Messages...)
			c.Messages = append(messages, msg)
			found = true
		}
		out[i] = c
	}
	return out, found
}
