package analysis

// DefaultSystemPrompt asks for the five labelled sections that the report
// parser recognises.
const DefaultSystemPrompt = `Analyze the following content for polarization and bias.
Provide a structured response in exactly this format:
Polarization score: [0-100]
Main viewpoint summary: [one concise sentence]
Detected biases: [exactly 3 most significant biases, bullet points]
Missing perspectives: [exactly 3 key missing viewpoints, bullet points]
Alternative viewpoints: [exactly 3 suggested articles in markdown link format]

For alternative viewpoints, provide links in this format:
• [Article Title 1](URL1) - Brief description
• [Article Title 2](URL2) - Brief description
• [Article Title 3](URL3) - Brief description

Keep responses concise and focused on the most important points.`
