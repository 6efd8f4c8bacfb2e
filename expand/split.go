package expand

// defaultIFS is "space tab newline", spec §4.3 stage 3's default.
const defaultIFS = " \t\n"

// splitFields turns a word's substitution parts into argv fields, field
// splitting only the splittable (unquoted substitution result) parts on
// IFS. Non-splittable parts never introduce a field boundary, even when
// they contain whitespace bytes -- that's what double quotes (and plain
// literal word text, which the lexer never lets span a space) guarantee.
//
// A word contributes zero fields only when every part is splittable and
// the joined splittable text collapses entirely to IFS runs (or is
// empty); any literal/quoted content, even empty, keeps the word as one
// field -- the same "" vs $empty distinction real shells make.
func splitFields(parts []part, cfg *Config) []field {
	ifs := ifsChars(cfg)

	var fields []field
	var cur field
	haveLiteral := false
	started := false

	endField := func() {
		if started {
			fields = append(fields, cur)
		}
		cur = field{}
		started = false
	}

	for _, p := range parts {
		if !p.splittable {
			haveLiteral = true
			started = true
			cur.bytes = append(cur.bytes, p.bytes...)
			continue
		}
		i := 0
		for i < len(p.bytes) {
			b := p.bytes[i]
			if isIFS(b, ifs) {
				endField()
				i++
				continue
			}
			started = true
			cur.bytes = append(cur.bytes, b)
			i++
		}
	}
	endField()

	if len(fields) == 0 && (haveLiteral || len(parts) == 0) {
		fields = append(fields, field{})
	}
	return fields
}

// field is one argv element before glob expansion, still carrying its
// marker-tagged bytes.
type field struct {
	bytes []byte
}

func ifsChars(cfg *Config) string {
	if cfg.State != nil {
		if v, ok := cfg.State.Lookup("IFS"); ok {
			return v
		}
	}
	return defaultIFS
}

func isIFS(b byte, ifs string) bool {
	for i := 0; i < len(ifs); i++ {
		if ifs[i] == b {
			return true
		}
	}
	return false
}
