package prompt

import (
	"fmt"
	"strings"
)

// DefaultNumQueries is the number of search queries requested by default.
const DefaultNumQueries = 3

// SearchQueries asks for n search queries as a JSON list of strings.
func SearchQueries(question string, n int) string {
	if n <= 0 {
		n = DefaultNumQueries
	}
	return fmt.Sprintf("Write %d google search queries to search online that form an objective opinion from the following: \"%s\"\n"+
		"You must respond with a list of strings in the following format: [\"query 1\", \"query 2\", \"query 3\"].",
		n, question)
}

// Summary asks for a summary of data with respect to query. When the data
// does not relate to the query the model is asked to summarize it anyway.
func Summary(query, data string) string {
	return fmt.Sprintf("%s\n\nUsing the above text, summarize it based on the following task or query: \"%s\".\n"+
		"If the query cannot be answered using the text, you must summarize the text in short.\n"+
		"Include all factual information such as numbers, stats and quotes if available.", data, query)
}

// Concepts asks for five concepts to learn, as a JSON list of strings.
func Concepts(question, summary string) string {
	return fmt.Sprintf("\"\"\"%s\"\"\"\n\nBased on the information above, generate a list of 5 main concepts to learn for the question: \"%s\".\n"+
		"You must respond with a list of strings in the following format: [\"concept 1\", \"concept 2\", \"concept 3\", \"concept 4\", \"concept 5\"].",
		summary, question)
}

// Lesson asks for an in-depth lesson about concept in markdown.
func Lesson(concept string) string {
	return fmt.Sprintf("Generate a comprehensive lesson about %s in markdown syntax. "+
		"Include the definition of %s, its history and background, examples and practical applications. "+
		"Write clear section headings.", concept, concept)
}

// AutoAgent asks the model to pick an agent for question. The model is
// expected to reply with {"agent": "...", "agent_role_prompt": "..."}.
func AutoAgent(question string, agents []string) string {
	return fmt.Sprintf("Task: \"%s\"\n\n"+
		"Choose the research agent best suited to this task and write its role prompt. "+
		"Known agents are: %s. You may invent a new one if none fits.\n"+
		"Respond only with JSON in the following format: "+
		"{\"agent\": \"<agent name>\", \"agent_role_prompt\": \"<role prompt in second person>\"}.",
		question, strings.Join(agents, ", "))
}
