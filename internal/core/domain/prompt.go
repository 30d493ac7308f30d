package domain

// DefaultQAPrompt is the built-in answer template. {context} receives the
// numbered passages and {question} the user's question.
const DefaultQAPrompt = "以下是一些相關的上下文信息：\n" +
	"----------------\n" +
	"{context}\n" +
	"----------------\n" +
	"\n" +
	"根據上述上下文，請回答問題：{question}\n" +
	"\n" +
	"請以繁體中文回答，並盡可能提供完整和準確的資訊。如果上下文中沒有相關信息，請誠實地說明無法回答。回答："

// ContextSeparator separates passages inside the {context} block.
const ContextSeparator = "\n----------------\n"
