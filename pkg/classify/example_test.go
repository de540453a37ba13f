package classify_test

import (
	"fmt"

	"github.com/caldwen/spellweave/pkg/classify"
	"github.com/caldwen/spellweave/pkg/spell"
)

func ExampleClassifier_Apply() {
	spells := []spell.Spell{
		{ID: "firebolt", Name: "Firebolt", Level: "apprentice", Effect: "A bolt of fire."},
		{ID: "icespike", Name: "Ice Spike", Level: "apprentice", Effect: "A shard of ice."},
		{ID: "ward", Name: "Lesser Ward", Level: "novice", Effect: "Negates spell damage."},
	}

	classify.New(nil, nil).Apply(spells)

	for _, s := range spells {
		fmt.Printf("%s: tier %d, element %q\n", s.ID, s.Tier, s.Element)
	}
	// Output:
	// firebolt: tier 1, element "fire"
	// icespike: tier 1, element "frost"
	// ward: tier 0, element "arcane"
}

func ExampleElementOf() {
	// The first matching element wins; "Flamefrost" is fire, not frost.
	s := spell.Spell{Name: "Flamefrost Cloak", Effect: "Wreathes the caster in twin energies."}
	fmt.Println(classify.ElementOf(s))
	// Output:
	// fire
}
