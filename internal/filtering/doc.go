// Package filtering selects registry components by name.
//
// Components are matched against include and exclude glob patterns. A '*'
// matches across '/' so "samtools/*" and "samtools*" both select every
// samtools subtool, and "*/sort" selects every sort subcommand.
//
// The rules, in order:
//
//  1. A name matching any exclude pattern is dropped.
//  2. With include patterns, a name must match at least one of them.
//  3. With no include patterns, every name not excluded is kept.
//
// # Usage Example
//
//	filter := filtering.NewDefaultNameFilter()
//	names, err := filtering.Apply(filter, all, []string{"samtools/*"}, []string{"*/view"})
package filtering
