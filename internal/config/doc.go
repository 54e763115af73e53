// Package config loads the typographic configuration.
//
// A configuration file is TOML or YAML, chosen by extension. Every section
// is optional; sections missing from the file keep their defaults.
//
//	window = 3
//	atoms = ["hardBreak", "horizontalRule", "image"]
//
//	[[characters]]
//	char = "U+00A0"
//	tag = "nbsp"
//
//	[[nodes]]
//	type = "hardBreak"
//	tag = "br"
//
//	[log]
//	default_level = "info"
//	levels = [{ name = "engine*", level = "debug" }]
//
//	[render]
//	class_prefix = "prose-editor-"
//
//	[[render.styles]]
//	tag = "nbsp"
//	foreground = "#5f87af"
//	glyph = "·"
//
// Characters are written either literally or as U+XXXX code points. When a
// file lists characters, nodes, atoms or styles, the list replaces the
// default list rather than extending it.
//
// Environment variables with the TYPOGRAPHIC_ prefix override file values;
// see Config.ApplyEnv.
package config
