package migration

const cdkPackage = "@taiga-ui/cdk"

// V3Rules returns the rule set of the version 3 upgrade in application order.
// Import order in reconciled modules follows this order.
func V3Rules() []Rule {
	wrappers := []string{"tui-wrapper"}
	wrapperAttrs := []string{"tuiWrapper"}

	return []Rule{
		{Kind: KindAttrRename, Target: "tuiResizableColumn", Replacement: `tuiTh [resizable]="true"`, Tags: []string{"th"}},
		{Kind: KindAttrRemove, Target: "new", Tags: []string{"tui-editor"}},
		{Kind: KindTagToDirective, Target: "tui-group", Replacement: "tuiGroup"},
		{Kind: KindTagToDirective, Target: "tui-wrapper", Replacement: "tuiWrapper"},
		{Kind: KindAttrRename, Target: "[hovered]", Replacement: "[hover]", Tags: wrappers, WithAttrs: wrapperAttrs},
		{Kind: KindAttrRename, Target: "[pressed]", Replacement: "[active]", Tags: wrappers, WithAttrs: wrapperAttrs},
		{Kind: KindTextfieldController, Tags: TextfieldTags()},
		{
			Kind:        KindEventRename,
			Target:      "autofilledChange",
			Replacement: "tuiAutofilledChange",
			Import:      &Import{Name: "TuiAutofilledModule", From: cdkPackage},
		},
		{
			Kind:        KindEventRename,
			Target:      "pressedChange",
			Replacement: "tuiPressedChange",
			Import:      &Import{Name: "TuiPressedModule", From: cdkPackage},
		},
		{
			Kind:        KindEventRename,
			Target:      "hoveredChange",
			Replacement: "tuiHoveredChange",
			Import:      &Import{Name: "TuiHoveredModule", From: cdkPackage},
		},
	}
}
