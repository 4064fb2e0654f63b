package asyncschema

func validateString(c *Check) {
	if c.Skip(TypeString) {
		return
	}
	c.Require(TypeString)
	if c.Empty(TypeString) {
		return
	}
	c.TypeOf()
	c.Range(c.Value)
	c.Match()
	if c.Rule.Whitespace {
		c.Whitespace()
	}
}

func validateNumber(c *Check) {
	if s, ok := c.Value.(string); ok && s == "" {
		c.Value = nil
	}
	if c.Skip("") {
		return
	}
	c.Require("")
	if c.Value != nil {
		c.TypeOf()
		c.Range(c.Value)
	}
}

// validateBounded serves integer and float.
func validateBounded(c *Check) {
	if c.Skip("") {
		return
	}
	c.Require("")
	if c.Value != nil {
		c.TypeOf()
		c.Range(c.Value)
	}
}

// validateTyped serves boolean, method and object.
func validateTyped(c *Check) {
	if c.Skip("") {
		return
	}
	c.Require("")
	if c.Value != nil {
		c.TypeOf()
	}
}

func validateRegexp(c *Check) {
	if c.Skip("") {
		return
	}
	c.Require("")
	if !c.Empty("") {
		c.TypeOf()
	}
}

func validateArray(c *Check) {
	if isNil(c.Value) && !c.Rule.Required {
		return
	}
	c.Require(TypeArray)
	if !isNil(c.Value) {
		c.TypeOf()
		c.Range(c.Value)
	}
}

func validateEnum(c *Check) {
	if c.Skip("") {
		return
	}
	c.Require("")
	if c.Value != nil {
		c.EnumOf()
	}
}

func validatePattern(c *Check) {
	if c.Skip(TypeString) {
		return
	}
	c.Require(TypeString)
	if !c.Empty(TypeString) {
		c.Match()
	}
}

func validateDate(c *Check) {
	if c.Skip(TypeDate) {
		return
	}
	c.Require(TypeDate)
	if c.Empty(TypeDate) {
		return
	}
	t, ok := toTime(c.Value)
	if !ok {
		c.Failf(TypeMessageKey(TypeDate), c.Rule.FullField(), string(TypeDate))
		return
	}
	c.Range(float64(t.UnixMilli()))
}

// validateFormat serves url, hex and email.
func validateFormat(c *Check) {
	if c.Skip("") {
		return
	}
	c.Require("")
	if !c.Empty("") {
		c.TypeOf()
	}
}

func validateAny(c *Check) {
	if c.Skip("") {
		return
	}
	c.Require("")
}

func validateRequired(c *Check) {
	t := TypeObject
	switch {
	case isArray(c.Value):
		t = TypeArray
	case isString(c.Value):
		t = TypeString
	}
	c.Require(t)
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}
