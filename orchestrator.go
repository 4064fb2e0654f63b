package asyncschema

import "context"

// validate runs every field of desc concurrently and joins their errors in
// declaration order. Under the first policy it settles at the earliest
// failing field once every field before it has passed; later fields keep
// running detached and write into buffered slots nobody reads.
func (r *run) validate(ctx context.Context, desc Descriptor, data Object, prefix string) (Object, []ValidationError, error) {
	series, source := r.series(desc, data, prefix)
	if len(series) == 0 {
		return source, nil, nil
	}

	slots := make([]chan []ValidationError, len(series))
	for i, fs := range series {
		ch := make(chan []ValidationError, 1)
		slots[i] = ch
		serial := r.cfg.serial(fs.name)
		go func() { ch <- r.runField(ctx, fs, serial) }()
	}

	var errs []ValidationError
	for _, ch := range slots {
		select {
		case <-ctx.Done():
			return source, nil, ctx.Err()
		case fe := <-ch:
			errs = append(errs, fe...)
		}
		if r.cfg.first && len(errs) > 0 {
			return source, errs[:1], nil
		}
	}
	if err := ctx.Err(); err != nil {
		return source, nil, err
	}
	return source, errs, nil
}
