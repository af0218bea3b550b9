package models

// UserData 用户资料
type UserData struct {
	UID             string  `json:"uid"`
	FullName        string  `json:"full_name"`
	Email           string  `json:"email"`
	Age             *int    `json:"age,omitempty"`
	Gender          *string `json:"gender,omitempty"`
	PhoneNumber     *string `json:"phone_number,omitempty"`
	Address         *string `json:"address,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

// ProfilePatch 资料更新，只更新非 nil 字段
type ProfilePatch struct {
	FullName        *string `json:"full_name,omitempty"`
	Email           *string `json:"email,omitempty"`
	Age             *int    `json:"age,omitempty"`
	Gender          *string `json:"gender,omitempty"`
	PhoneNumber     *string `json:"phone_number,omitempty"`
	Address         *string `json:"address,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

// Empty 没有任何字段需要更新
func (p ProfilePatch) Empty() bool {
	return p.FullName == nil && p.Email == nil && p.Age == nil && p.Gender == nil &&
		p.PhoneNumber == nil && p.Address == nil && p.ProfileImageURL == nil
}

// Apply 把 patch 合并到 u 上
func (p ProfilePatch) Apply(u *UserData) {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Age != nil {
		u.Age = p.Age
	}
	if p.Gender != nil {
		u.Gender = p.Gender
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = p.PhoneNumber
	}
	if p.Address != nil {
		u.Address = p.Address
	}
	if p.ProfileImageURL != nil {
		u.ProfileImageURL = p.ProfileImageURL
	}
}
