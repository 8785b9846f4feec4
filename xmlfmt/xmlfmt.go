// Package xmlfmt is the pure function mapping a core.ParsedPackage to the
// three XML chunk strings (primary, filelists, other) OrderedSink appends.
// Deterministic: the same package always yields identical byte output.
package xmlfmt

import (
	"fmt"
	"strings"

	"github.com/velichkov/createrepo-c/core"
)

// Format renders pkg into its three stream chunks. It never fails on a
// structurally valid *core.ParsedPackage; a returned error signals a fatal
// formatting bug (e.g. an uninitialized field invariant violated upstream)
// and is non-retryable, per spec §4.5.
func Format(pkg *core.ParsedPackage) (core.XmlTriple, error) {
	if pkg == nil {
		return core.XmlTriple{}, fmt.Errorf("xmlfmt: nil package")
	}
	return core.XmlTriple{
		Primary:   formatPrimary(pkg),
		Filelists: formatFilelists(pkg),
		Other:     formatOther(pkg),
	}, nil
}

func formatPrimary(p *core.ParsedPackage) string {
	d := &p.Descriptor
	var b strings.Builder
	fmt.Fprintf(&b, "<package type=\"rpm\">\n")
	fmt.Fprintf(&b, "  <name>%s</name>\n", escape(p.Name))
	fmt.Fprintf(&b, "  <arch>%s</arch>\n", escape(d.Arch))
	fmt.Fprintf(&b, "  <version epoch=\"%s\" ver=\"%s\" rel=\"%s\"/>\n", escape(d.Epoch), escape(d.Version), escape(d.Release))
	fmt.Fprintf(&b, "  <checksum type=\"%s\" pkgid=\"YES\">%s</checksum>\n", escape(string(p.ChecksumKindName)), p.PkgID)
	fmt.Fprintf(&b, "  <summary>%s</summary>\n", escape(d.Summary))
	fmt.Fprintf(&b, "  <description>%s</description>\n", escape(d.Description))
	fmt.Fprintf(&b, "  <packager>%s</packager>\n", escape(d.PackagerName))
	fmt.Fprintf(&b, "  <url>%s</url>\n", escape(d.URL))
	fmt.Fprintf(&b, "  <time file=\"%d\" build=\"%d\"/>\n", p.TimeFile, d.BuildTime)
	fmt.Fprintf(&b, "  <size package=\"%d\"/>\n", p.SizePackage)
	fmt.Fprintf(&b, "  <location href=\"%s\"%s/>\n", escape(p.LocationHref), locationBase(p.LocationBase))
	fmt.Fprintf(&b, "  <format>\n")
	fmt.Fprintf(&b, "    <vendor>%s</vendor>\n", escape(d.Vendor))
	fmt.Fprintf(&b, "    <license>%s</license>\n", escape(d.License))
	fmt.Fprintf(&b, "    <group>%s</group>\n", escape(d.Group))
	fmt.Fprintf(&b, "    <sourcerpm>%s</sourcerpm>\n", escape(d.SourceRPM))
	fmt.Fprintf(&b, "    <header-range start=\"%d\" end=\"%d\"/>\n", p.RPMHeaderStart, p.RPMHeaderEnd)
	writeDeps(&b, "provides", d.Provides)
	writeDeps(&b, "requires", d.Requires)
	writeDeps(&b, "conflicts", d.Conflicts)
	writeDeps(&b, "obsoletes", d.Obsoletes)
	writeDeps(&b, "suggests", d.Suggests)
	writeDeps(&b, "enhances", d.Enhances)
	writeDeps(&b, "recommends", d.Recommends)
	writeDeps(&b, "supplements", d.Supplements)
	fmt.Fprintf(&b, "  </format>\n")
	fmt.Fprintf(&b, "</package>\n")
	return b.String()
}

func formatFilelists(p *core.ParsedPackage) string {
	d := &p.Descriptor
	var b strings.Builder
	fmt.Fprintf(&b, "<package pkgid=\"%s\" name=\"%s\" arch=\"%s\">\n", p.PkgID, escape(p.Name), escape(d.Arch))
	fmt.Fprintf(&b, "  <version epoch=\"%s\" ver=\"%s\" rel=\"%s\"/>\n", escape(d.Epoch), escape(d.Version), escape(d.Release))
	for _, f := range d.Files {
		typ := "file"
		if f.IsDir {
			typ = "dir"
		} else if f.IsGhost {
			typ = "ghost"
		}
		fmt.Fprintf(&b, "  <file type=\"%s\">%s</file>\n", typ, escape(f.Path))
	}
	fmt.Fprintf(&b, "</package>\n")
	return b.String()
}

func formatOther(p *core.ParsedPackage) string {
	d := &p.Descriptor
	var b strings.Builder
	fmt.Fprintf(&b, "<package pkgid=\"%s\" name=\"%s\" arch=\"%s\">\n", p.PkgID, escape(p.Name), escape(d.Arch))
	fmt.Fprintf(&b, "  <version epoch=\"%s\" ver=\"%s\" rel=\"%s\"/>\n", escape(d.Epoch), escape(d.Version), escape(d.Release))
	for _, c := range d.ChangelogEntries {
		fmt.Fprintf(&b, "  <changelog author=\"%s\" date=\"%d\">%s</changelog>\n", escape(c.Author), c.Date, escape(c.Text))
	}
	fmt.Fprintf(&b, "</package>\n")
	return b.String()
}

func writeDeps(b *strings.Builder, tag string, deps []core.DepEntry) {
	if len(deps) == 0 {
		return
	}
	fmt.Fprintf(b, "    <%s>\n", tag)
	for _, dep := range deps {
		fmt.Fprintf(b, "      <entry name=\"%s\"", escape(dep.Name))
		if dep.Flags != "" {
			fmt.Fprintf(b, " flags=\"%s\" epoch=\"%s\" ver=\"%s\" rel=\"%s\"", dep.Flags, escape(dep.Epoch), escape(dep.Version), escape(dep.Release))
		}
		if dep.Pre {
			fmt.Fprintf(b, " pre=\"1\"")
		}
		fmt.Fprintf(b, "/>\n")
	}
	fmt.Fprintf(b, "    </%s>\n", tag)
}

func locationBase(base string) string {
	if base == "" {
		return ""
	}
	return fmt.Sprintf(" xml:base=%q", base)
}

func escape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
	)
	return r.Replace(s)
}
