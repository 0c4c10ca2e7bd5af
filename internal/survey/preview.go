package survey

import "fmt"

// WelcomeStep is the step index of the welcome screen shown before the
// first element.
const WelcomeStep = -1

// Preview walks through a survey one element at a time the way a
// respondent would see it. Answers are kept in memory only.
type Preview struct {
	title    string
	elements []Element
	step     int
	answers  map[string]any
}

// NewPreview starts a preview on the welcome screen.
func NewPreview(title string, s Schema) *Preview {
	return &Preview{
		title:    title,
		elements: s.Elements(),
		step:     WelcomeStep,
		answers:  map[string]any{},
	}
}

// Title is the survey title.
func (p *Preview) Title() string { return p.title }

// Len is the number of elements.
func (p *Preview) Len() int { return len(p.elements) }

// Step is the current element index, or WelcomeStep.
func (p *Preview) Step() int { return p.step }

// Welcome reports whether the welcome screen is showing.
func (p *Preview) Welcome() bool { return p.step == WelcomeStep }

// Begin leaves the welcome screen.
func (p *Preview) Begin() {
	if len(p.elements) > 0 {
		p.step = 0
	}
}

// Restart returns to the welcome screen. Answers are kept.
func (p *Preview) Restart() { p.step = WelcomeStep }

// Next advances one element and stops at the last one.
func (p *Preview) Next() {
	if p.step >= 0 && !p.IsLast() {
		p.step++
	}
}

// Prev goes back one element and stops at the first one.
func (p *Preview) Prev() {
	if p.step > 0 {
		p.step--
	}
}

// IsLast reports whether the current element is the final one.
func (p *Preview) IsLast() bool {
	return p.step == len(p.elements)-1
}

// Current returns the element at the current step.
func (p *Preview) Current() (Element, bool) {
	if p.step < 0 || p.step >= len(p.elements) {
		return Element{}, false
	}
	return p.elements[p.step], true
}

// Progress is the percentage of elements reached, counting the current one.
func (p *Preview) Progress() float64 {
	if len(p.elements) == 0 || p.step < 0 {
		return 0
	}
	return float64(p.step+1) / float64(len(p.elements)) * 100
}

// Position renders "n / total" for the current step.
func (p *Preview) Position() string {
	return fmt.Sprintf("%d / %d", p.step+1, len(p.elements))
}

// Respond records value for the element called name.
func (p *Preview) Respond(name string, value any) {
	p.answers[name] = value
}

// Response returns the recorded value for name.
func (p *Preview) Response(name string) (any, bool) {
	v, ok := p.answers[name]
	return v, ok
}

// Responses returns a copy of all recorded values.
func (p *Preview) Responses() map[string]any {
	out := make(map[string]any, len(p.answers))
	for k, v := range p.answers {
		out[k] = v
	}
	return out
}
