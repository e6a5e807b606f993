package insight

import "github.com/lifelens/lifelens/internal/domain"

// mythsAndFacts is the curated list served by the myths endpoint.
var mythsAndFacts = []domain.MythFact{
	{
		Myth: "You need 8 glasses of water a day.",
		Fact: "Water needs vary by individual. The color of your urine is a better indicator of hydration.",
	},
	{
		Myth: "Eating late at night makes you gain weight.",
		Fact: "Total daily calorie intake matters more than when you eat.",
	},
	{
		Myth: "Cracking your knuckles causes arthritis.",
		Fact: "No studies have found a connection between knuckle cracking and arthritis.",
	},
	{
		Myth: "You lose most of your body heat through your head.",
		Fact: "You lose heat through any uncovered part of your body at roughly the same rate.",
	},
	{
		Myth: "Reading in dim light damages your eyes.",
		Fact: "Reading in dim light may cause eye strain but doesn't cause permanent damage.",
	},
	{
		Myth: "Vaccines cause autism.",
		Fact: "Extensive research has found no link between vaccines and autism.",
	},
	{
		Myth: "You should wait an hour after eating before swimming.",
		Fact: "There's no evidence that swimming after eating increases cramp risk.",
	},
	{
		Myth: "Antibiotics can treat the common cold.",
		Fact: "Colds are caused by viruses, which antibiotics cannot treat.",
	},
	{
		Myth: "You only use 10% of your brain.",
		Fact: "Most of your brain is active most of the time, even during sleep.",
	},
	{
		Myth: "Vitamin C prevents colds.",
		Fact: "Vitamin C doesn't prevent colds but may slightly reduce their duration.",
	},
}

// MythsAndFacts returns a copy of the curated myth/fact list.
func MythsAndFacts() []domain.MythFact {
	out := make([]domain.MythFact, len(mythsAndFacts))
	copy(out, mythsAndFacts)
	return out
}
