package officer

import (
	"io"
	"io/ioutil"
	"sigem/authority"
	"sigem/bizerror"
	"sigem/client/s3"
	"sigem/session"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
)

func DetailPhoto(id types.ID, s *session.Session) ([]byte, error) {
	r, err := s3.GetObjectFunc("officer-photos/"+id.String()+".png", s)
	if err != nil {
		if serErr, ok := err.(oss.ServiceError); ok && serErr.Code == "NoSuchKey" {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return ioutil.ReadAll(r)
}

func CreatePhoto(id types.ID, r io.Reader, s *session.Session) error {
	if !s.CanDo(authority.ActionManageOfficers) && id != s.Identity.OfficerID {
		return bizerror.ErrForbidden
	}

	return s3.PutObjectFunc("officer-photos/"+id.String()+".png", r, s)
}
