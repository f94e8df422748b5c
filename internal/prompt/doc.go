// Package prompt builds the text sent to the language model at each stage of
// a research run: agent role prompts, search query generation, page
// summaries, the final report for each report type, and the optional
// concept and lesson prompts.
//
// The templates are intentionally short. The package owns their wording but
// not their meaning, which is delegated to the model.
package prompt
