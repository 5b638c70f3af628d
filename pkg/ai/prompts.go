package ai

// ClusterLabelPrompt asks for a short thematic label covering a group of
// concept labels. Format args: comma-separated member labels.
const ClusterLabelPrompt = `
# Task Context
You are a helpful assistant that names thematic groups of concepts extracted from a document.

# Background Data
Concepts in this group: [%s]

# Detailed Task Description & Rules
- Produce ONE short label (2-4 words) that captures the common theme of the listed concepts.
- Use title case.
- Do not enumerate the concepts, do not use the word "concepts" or "group".
- Prefer a domain term over a generic description ("Billing Pipeline" over "Related Items").

# Output Formatting
Respond with a JSON object with a single "label" field containing the label text. No explanation.
`

// RefinementLabelPrompt asks for a sub-theme label inside a named cluster.
// Format args: parent cluster label, comma-separated member labels.
const RefinementLabelPrompt = `
# Task Context
You are a helpful assistant that names sub-themes within a thematic group of document concepts.

# Background Data
Parent theme: "%s"
Concepts in this sub-group: [%s]

# Detailed Task Description & Rules
- Produce ONE short label (2-4 words) describing what distinguishes this sub-group within the parent theme.
- Use title case.
- The label must not simply repeat the parent theme.

# Output Formatting
Respond with a JSON object with a single "label" field containing the label text. No explanation.
`

// DocumentSummaryPrompt asks for a compact abstract of a document given its
// title and extracted text. Format args: document title, document text.
const DocumentSummaryPrompt = `
# Task Context
You are a helpful assistant that writes compact document abstracts for a knowledge organizer.

# Background Data
Document title: "%s"

Document text:
%s

# Detailed Task Description & Rules
- Summarize the document in 2-3 sentences.
- State what the document is about and its most important facts or conclusions.
- Write in neutral, factual tone. No bullet points, no headings.

# Output Formatting
Return only the summary text.
`
