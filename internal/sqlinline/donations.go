package sqlinline

// PostgreSQL statements for the donation records table.

const QCreateDonationsTable = `--sql 0f99b9b2-b969-4b5a-b3fb-546c4cb5c697
create table if not exists donations (
    id          bigserial primary key,
    full_name   text not null default '',
    amount      text not null default '',
    image_data  bytea not null,
    status      text not null default 'pending' check (status in ('pending', 'confirmed')),
    created_at  timestamptz not null default now(),
    requeued_at timestamptz
);
`

const QCreateDonationsPendingIndex = `--sql 9e0ee996-38b7-4e71-a87a-0739c1353827
create index if not exists donations_status_created_idx on donations (status, created_at, id);
`

const QInsertDonation = `--sql cffa2a78-826b-44a2-a9c6-909d826272ca
insert into donations (full_name, amount, image_data, status, created_at)
values ($1::text, $2::text, $3::bytea, 'pending', clock_timestamp())
returning id;
`

const QGetDonation = `--sql 08167b7c-790a-49c1-8c83-dfb62ba675de
select id, full_name, amount, image_data, status, created_at, requeued_at
from donations
where id = $1::bigint;
`

const QListPendingDonations = `--sql 21785c7d-de6f-4fdb-80cc-5d7b39da6edf
select id, full_name, amount, status, created_at, requeued_at
from donations
where status = 'pending'
order by created_at asc, id asc;
`

const QCountPendingDonations = `--sql bb4f3ad8-d905-4c22-84a2-52e91b702131
select count(*)
from donations
where status = 'pending';
`

const QNextPendingDonation = `--sql 905e24f1-56ed-4172-98a3-7fcb97b8b030
select id, full_name, amount, status, created_at, requeued_at
from donations
where status = 'pending'
order by coalesce(requeued_at, created_at) asc, id asc
limit 1;
`

const QRequeueDonation = `--sql 53a31e3e-438a-4744-a732-86afe82a1f26
update donations
set requeued_at = case when status = 'pending' then clock_timestamp() else requeued_at end
where id = $1::bigint;
`

const QConfirmDonation = `--sql adfdf03e-2230-4be9-8f3d-a54d02223edc
update donations
set full_name = $2::text, amount = $3::text, status = 'confirmed'
where id = $1::bigint;
`

const QListConfirmedNewestFirst = `--sql 378163f4-e2e1-4845-a6e2-0211006e97e2
select id, full_name, amount, status, created_at, requeued_at
from donations
where status = 'confirmed'
order by created_at desc, id desc;
`

const QListConfirmedOldestFirst = `--sql 16f8756a-9992-4cf9-94fa-af8721325d6a
select id, full_name, amount, status, created_at, requeued_at
from donations
where status = 'confirmed'
order by created_at asc, id asc;
`

const QDeleteAllDonations = `--sql 1f1f96fb-443a-4a67-8543-e310bca8b7cc
delete from donations;
`
