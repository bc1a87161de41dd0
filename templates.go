package reviewserver

// ContextSeparator joins retrieved review chunks into the context block,
// most similar chunk first.
const ContextSeparator = "\n\n"

// AnswerTemplate is the default answer prompt. Generative adapters fill
// it with the concatenated context block followed by the question; a
// deployment can override it with the adapters' templates dir option.
const AnswerTemplate = `You are an expert in answering questions about a pizza restaurant.
Use the following pieces of retrieved restaurant reviews to answer the question.
If you don't know the answer based on the provided reviews, just say that you don't know,
don't try to make up an answer.

Context: %s

Question: %s
`
