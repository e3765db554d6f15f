package diag

func New(sev Severity, code Code, primary Subject, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
		Notes:    nil,
	}
}

func NewError(code Code, primary Subject, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sub Subject, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Subject: sub, Msg: msg})
	return d
}
