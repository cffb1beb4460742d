package analyzer

// DefaultIndicatorPhrases is the catalog of phrase templates that anchor
// the similarity search for professional-experience statements. It is
// read-only configuration data; deployments that need a different catalog
// pass their own slice to NewExtractor.
var DefaultIndicatorPhrases = []string{
	"I worked at", "I have experience in", "Previously, I was at", "Before that, I worked at",
	"My previous company was", "I have been working as", "My last role was at", "I was employed at",
	"I started my career at", "Currently, I am working at",
	"I was responsible for", "My role involved", "I have been handling", "My work includes",
	"I specialize in", "I contribute to", "I manage", "I lead a team for", "I developed",
	"I did an internship at", "I was an intern at", "I worked as a freelancer for",
	"I contributed to a project at", "I was a consultant for", "I had a contract role at",
	"I have X years of experience in", "With X years of experience in",
	"For the past X years, I have worked on", "Over the last X years, I have been involved in",
	"I bring X years of experience in",
}
