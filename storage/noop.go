package storage

import "context"

type NoopStorage struct {
}

func (s *NoopStorage) MakeProgram(ctx context.Context, pid string) error {
	return nil
}

func (s *NoopStorage) RemProgram(ctx context.Context, pid string) error {
	return nil
}

func (s *NoopStorage) GetTraces(ctx context.Context, pid string) ([]*Trace, error) {
	return nil, nil
}

func (s *NoopStorage) WriteTraces(ctx context.Context, pid string, ts []*Trace) error {
	return nil
}

func (s *NoopStorage) Open(ctx context.Context) error {
	return nil
}

func (s *NoopStorage) Close(ctx context.Context) error {
	return nil
}
