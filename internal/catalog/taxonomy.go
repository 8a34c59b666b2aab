package catalog

import "strings"

// Category is one skill family and its related terms, most representative first.
type Category struct {
	Name  string
	Terms []string
}

// Taxonomy maps skill tags to related terms. It is read-only after construction.
type Taxonomy struct {
	categories []Category
	byName     map[string]int
	byTerm     map[string]int // first category listing the term
}

// NewTaxonomy indexes categories. Declaration order decides which category
// wins when a term is listed more than once.
func NewTaxonomy(categories []Category) *Taxonomy {
	t := &Taxonomy{
		categories: make([]Category, len(categories)),
		byName:     make(map[string]int, len(categories)),
		byTerm:     make(map[string]int),
	}
	for i, c := range categories {
		terms := append([]string(nil), c.Terms...)
		t.categories[i] = Category{Name: c.Name, Terms: terms}
		t.byName[fold(c.Name)] = i
		for _, term := range terms {
			if _, ok := t.byTerm[fold(term)]; !ok {
				t.byTerm[fold(term)] = i
			}
		}
	}
	return t
}

// Categories returns a copy of the categories in declaration order.
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Terms: append([]string(nil), c.Terms...)}
	}
	return out
}

// Related returns up to limit terms related to tag.
//
// A tag naming a category yields that category's first terms. A tag listed as
// a term yields the first terms of its category, skipping the tag itself.
func (t *Taxonomy) Related(tag string, limit int) []string {
	if t == nil || limit <= 0 {
		return nil
	}
	key := fold(tag)
	if i, ok := t.byName[key]; ok {
		return firstTerms(t.categories[i].Terms, "", limit)
	}
	if i, ok := t.byTerm[key]; ok {
		return firstTerms(t.categories[i].Terms, key, limit)
	}
	return nil
}

func firstTerms(terms []string, skip string, limit int) []string {
	out := make([]string, 0, limit)
	for _, term := range terms {
		if len(out) == limit {
			break
		}
		if skip != "" && fold(term) == skip {
			continue
		}
		out = append(out, term)
	}
	return out
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var defaultTaxonomy = NewTaxonomy([]Category{
	{Name: "Data & Analytics", Terms: []string{
		"Data Analysis", "Analytics", "Business Intelligence", "Data Science", "Machine Learning",
		"Artificial Intelligence", "Big Data", "Data Management", "Statistical Analysis", "Data Visualization",
	}},
	{Name: "Programming & Development", Terms: []string{
		"Software Development", "Programming", "Web Development", "Cloud Computing", "Cybersecurity",
		"Databases", "API", "DevOps", "System Design", "Mobile Development",
	}},
	{Name: "Marketing & Sales", Terms: []string{
		"Digital Marketing", "Marketing Strategy", "Advertising", "Branding", "Sales",
		"Content Marketing", "Social Media Marketing", "Market Research", "Customer Relationship Management", "E-commerce",
	}},
	{Name: "Project & Operations Management", Terms: []string{
		"Project Management", "Operations Management", "Agile Methodology", "Supply Chain Management", "Process Improvement",
		"Lean Methodologies", "Risk Management", "Strategic Planning", "Resource Management", "Quality Management",
	}},
	{Name: "Business & Finance", Terms: []string{
		"Business Strategy", "Financial Management", "Accounting", "Economics", "Entrepreneurship",
		"Investment", "Corporate Finance", "Risk Management", "Financial Analysis", "Business Ethics",
	}},
	{Name: "Human Resources & Organizational Development", Terms: []string{
		"Human Resources", "Talent Management", "Recruitment", "Employee Engagement", "Organizational Development",
		"Leadership Development", "Performance Management", "Diversity and Inclusion", "Compensation Management", "Team Management",
	}},
	{Name: "Healthcare & Clinical", Terms: []string{
		"Public Health", "Nursing Practices", "Patient Care", "Medical Emergency", "Mental Health",
		"Pharmacology", "Epidemiology", "Health Informatics", "Clinical Leadership", "Preventative Care",
	}},
	{Name: "Design & Creative Arts", Terms: []string{
		"Graphic Design", "UI/UX Design", "User Experience Design", "Web Design", "Animation",
		"Photography", "Video Production", "Storytelling", "Creative Thinking", "Game Design",
	}},
	{Name: "Communication & Soft Skills", Terms: []string{
		"Communication", "Problem Solving", "Collaboration", "Leadership", "Critical Thinking",
		"Decision Making", "Negotiation", "Presentation Skills", "Adaptability", "Teamwork",
	}},
	{Name: "Research & Analysis", Terms: []string{
		"Research Methodologies", "Data Analysis", "Qualitative Research", "Quantitative Research", "Market Research",
		"Statistical Analysis", "Business Analysis", "System Analysis", "Competitive Analysis", "Policy Analysis",
	}},
	{Name: "Cybersecurity & IT Operations", Terms: []string{
		"Cybersecurity", "Network Security", "Cloud Computing", "Information Security", "Threat Detection",
		"Access Management", "Security Controls", "Vulnerability Management", "Incident Response", "IT Operations",
	}},
	{Name: "Product & UX/UI", Terms: []string{
		"Product Management", "Product Design", "User Experience Design", "User Interface Design", "User Research",
		"Prototyping", "User Story", "Product Strategy", "Usability Testing", "Service Design",
	}},
	{Name: "Education & Training", Terms: []string{
		"Training and Development", "Education Technology", "Professional Development", "Learning and Development", "Instructional Design",
		"Mentorship", "Coaching", "Curriculum Development", "Learning Management Systems", "Educational Planning",
	}},
	{Name: "Legal & Compliance", Terms: []string{
		"Regulatory Compliance", "Legal Research", "Contract Management", "Data Privacy", "Intellectual Property",
		"Corporate Governance", "Risk Management", "Ethical Standards", "Tax Compliance", "Labor Law",
	}},
})

// DefaultTaxonomy returns the built-in skill taxonomy. The value is shared and
// never mutated.
func DefaultTaxonomy() *Taxonomy { return defaultTaxonomy }
