package messages

// SeedChatID is the key of the one real chat.
const SeedChatID = "chat_1"

// SeedMessage ties a message to the chat it is seeded into.
type SeedMessage struct {
	ChatID  string
	Message Message
}

// DefaultSeed returns the demo conversation inserted into a fresh database.
func DefaultSeed() []SeedMessage {
	return []SeedMessage{
		{ChatID: SeedChatID, Message: Message{ID: "1", Sender: "Lucia", Text: "Je suis partante !", Timestamp: "21:24", Status: StatusRead}},
		{ChatID: SeedChatID, Message: Message{ID: "2", Sender: "Yassine", Text: "Parfait, à tout de suite 😉", Timestamp: "21:25", Status: StatusRead}},
		{ChatID: SeedChatID, Message: Message{ID: "3", Sender: "Moi", Text: "Je vais avoir 20/30 min de retard désolé", Timestamp: "21:26", IsMe: true, Status: StatusRead}},
		{ChatID: SeedChatID, Message: Message{ID: "4", Sender: "Yassine", Text: "Pas de souci", Timestamp: "22:11", Status: StatusRead}},
	}
}
