package unit

// Mode carries caller-defined flags through a traversal. A mode is derived for the units a unit
// requires, so flags that apply to the start unit can be dropped or set for its dependencies.
type Mode interface {
	// ForRequiredModules returns the mode that applies to units required by a unit visited
	// under this mode.
	ForRequiredModules() Mode
	parent() Mode
}

// ModeAs returns the first mode of type T in the chain starting at m.
func ModeAs[T Mode](m Mode) (T, bool) {
	for m != nil {
		if t, ok := m.(T); ok {
			return t, true
		}
		m = m.parent()
	}
	var zero T
	return zero, false
}

func requiredMode(m Mode) Mode {
	if m == nil {
		return nil
	}
	return m.ForRequiredModules()
}

// DoCompileMode selects whether the compiled or the edited sibling is the unit of interest.
// Required units are always compiled.
type DoCompileMode struct {
	Parent    Mode
	DoCompile bool
}

// ForRequiredModules implements Mode.
func (m DoCompileMode) ForRequiredModules() Mode {
	return DoCompileMode{Parent: requiredMode(m.Parent), DoCompile: true}
}

func (m DoCompileMode) parent() Mode { return m.Parent }

// IsDoCompile reports whether m asks for compiled units. A chain without a DoCompileMode does not.
func IsDoCompile(m Mode) bool {
	dm, ok := ModeAs[DoCompileMode](m)
	return ok && dm.DoCompile
}

// ForEditorMode marks a traversal started on behalf of an editor. Required units are never
// for the editor.
type ForEditorMode struct {
	Parent    Mode
	ForEditor bool
}

// ForRequiredModules implements Mode.
func (m ForEditorMode) ForRequiredModules() Mode {
	return ForEditorMode{Parent: requiredMode(m.Parent), ForEditor: false}
}

func (m ForEditorMode) parent() Mode { return m.Parent }

// IsForEditor reports whether m is for an editor.
func IsForEditor(m Mode) bool {
	em, ok := ModeAs[ForEditorMode](m)
	return ok && em.ForEditor
}
